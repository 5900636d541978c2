package app

import (
	"context"
	"fmt"

	"feedbacker-service/internal/domain"
)

// ResponseStore turns finished answer sets into response records.
type ResponseStore struct {
	store Store
}

func NewResponseStore(store Store) *ResponseStore {
	return &ResponseStore{store: store}
}

// PersistAnswers writes one response per answer plus the completion marker of
// the object in a single transaction. A re-finish overwrites by id.
func (r *ResponseStore) PersistAnswers(ctx context.Context, sessionID, objectID string, answers domain.AnswerSet) error {
	err := r.store.Transact(ctx, func(state *domain.EventState) error {
		ts := r.store.ServerTimestamp()
		for questionID, answer := range answers {
			if answer == nil {
				continue
			}
			resp := domain.AnswerToResponse(sessionID, objectID, questionID, answer, ts)
			state.Responses[resp.ID] = resp
		}
		state.CompletedObjects[domain.CompletedObjectKey(sessionID, objectID)] = domain.CompletedObjectEntry{
			SessionID: sessionID,
			ObjectID:  objectID,
			Timestamp: ts,
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: persist answers: %w", domain.ErrPersistence, err)
	}
	return nil
}

// ResetAll removes every response and completion marker.
func (r *ResponseStore) ResetAll(ctx context.Context) error {
	err := r.store.Transact(ctx, func(state *domain.EventState) error {
		state.Responses = map[string]domain.Response{}
		state.CompletedObjects = map[string]domain.CompletedObjectEntry{}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: reset responses: %w", domain.ErrPersistence, err)
	}
	return nil
}
