package zeromq

import (
	"encoding/json"
	"fmt"

	"github.com/open-teleop/movingheads/domain/inspection"
	customlog "github.com/open-teleop/movingheads/pkg/log"
)

// SnapshotProvider exposes the latest tick result.
type SnapshotProvider interface {
	Latest() (inspection.Snapshot, bool)
}

// SnapshotResponse is the Data of a SNAPSHOT_RESPONSE. Ready is false until
// the first tick has run.
type SnapshotResponse struct {
	Ready    bool                 `json:"ready"`
	Snapshot *inspection.Snapshot `json:"snapshot,omitempty"`
}

// SnapshotHandler handles SNAPSHOT_REQUEST messages
type SnapshotHandler struct {
	provider SnapshotProvider
	logger   customlog.Logger
}

// NewSnapshotHandler creates a new handler for snapshot requests
func NewSnapshotHandler(provider SnapshotProvider, logger customlog.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		provider: provider,
		logger:   logger,
	}
}

// HandleMessage processes a SNAPSHOT_REQUEST message and returns a SNAPSHOT_RESPONSE
func (h *SnapshotHandler) HandleMessage(data []byte) ([]byte, error) {
	var msg ZeroMQMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Type != MsgTypeSnapshotRequest {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type)
	}

	var resp SnapshotResponse
	if snap, ok := h.provider.Latest(); ok {
		resp.Ready = true
		resp.Snapshot = &snap
	}

	responseData, err := json.Marshal(newMessage(MsgTypeSnapshotResponse, resp))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize response: %w", err)
	}

	h.logger.Debugf("Sending snapshot response (%d bytes)", len(responseData))
	return responseData, nil
}

// RegisterSnapshotHandler wires snapshot requests on service to provider
func RegisterSnapshotHandler(service *ZeroMQService, provider SnapshotProvider, logger customlog.Logger) {
	service.RegisterHandler(MsgTypeSnapshotRequest, NewSnapshotHandler(provider, logger))
}
