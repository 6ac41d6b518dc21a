package api

import (
	"encoding/json"
	"errors"
	"syscall"

	"github.com/gofiber/contrib/websocket"

	"github.com/open-teleop/movingheads/domain/inspection"
	customlog "github.com/open-teleop/movingheads/pkg/log"
)

// logClose reports why a websocket read loop ended.
func logClose(logger customlog.Logger, name string, err error) {
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
		logger.Errorf("%s WS read error: %v", name, err)
		return
	}
	if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
		logger.Infof("%s WS connection closed: %v", name, err)
	} else {
		logger.Infof("%s WS connection closed normally.", name)
	}
}

// ControlWebSocketHandler reads JSON Twist commands and stores their linear
// part as the current sample.
func ControlWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, samples SampleWriter) {
	logger.Infof("Control WebSocket connected: %s", conn.RemoteAddr())
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			logClose(logger, "Control", err)
			break
		}

		if mt != websocket.TextMessage {
			logger.Infof("Ignoring non-text Control WS message type: %d", mt)
			continue
		}

		var twist TwistMsg
		if err := json.Unmarshal(msg, &twist); err != nil {
			logger.Warnf("Failed to unmarshal Twist command from WS: %v. Message: %s", err, string(msg))
			continue
		}
		logger.Debugf("Received Twist command via WS: linear=(%.2f, %.2f, %.2f)", twist.Linear.X, twist.Linear.Y, twist.Linear.Z)
		samples.Set(twist.Sample())
	}
	logger.Infof("Control WebSocket disconnected: %s", conn.RemoteAddr())
}

// StateSubscriber is a source of snapshots for the state websocket.
type StateSubscriber interface {
	Subscribe(buffer int) (<-chan inspection.Snapshot, func())
}

// StateWebSocketHandler streams every snapshot to the client as JSON until
// the client goes away.
func StateWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, state StateSubscriber) {
	logger.Infof("State WebSocket connected: %s", conn.RemoteAddr())
	snapshots, unsub := state.Subscribe(8)
	defer unsub()

	// The read loop only exists to notice the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logClose(logger, "State", err)
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			logger.Infof("State WebSocket disconnected: %s", conn.RemoteAddr())
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := conn.WriteJSON(snap); err != nil {
				logger.Warnf("State WS write failed: %v", err)
				return
			}
		}
	}
}
