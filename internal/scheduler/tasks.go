package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskPlacePersist = "places.persist"

const TaskPlaceRefresh = "places.refresh"

// PlacePersistPayload carries a resolved session into the background
// persistence pipeline. The photo is already in object storage; PhotoKey
// references it.
type PlacePersistPayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	PlaceID   string `json:"placeId"`
	PhotoKey  string `json:"photoKey,omitempty"`
}

// PlaceRefreshPayload re-fetches details for a place whose cached record
// may have gone stale.
type PlaceRefreshPayload struct {
	PlaceID string `json:"placeId"`
}

func NewPlacePersistTask(payload PlacePersistPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPlacePersist, data), nil
}

func ParsePlacePersistPayload(task *asynq.Task) (PlacePersistPayload, error) {
	var payload PlacePersistPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PlacePersistPayload{}, err
	}
	return payload, nil
}

func NewPlaceRefreshTask(payload PlaceRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPlaceRefresh, data), nil
}

func ParsePlaceRefreshPayload(task *asynq.Task) (PlaceRefreshPayload, error) {
	var payload PlaceRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PlaceRefreshPayload{}, err
	}
	return payload, nil
}
