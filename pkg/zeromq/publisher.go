package zeromq

import (
	"context"
	"fmt"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/google/uuid"

	"github.com/open-teleop/movingheads/domain/inspection"
	"github.com/open-teleop/movingheads/domain/targeting"
	fb "github.com/open-teleop/movingheads/pkg/flatbuffers/movingheads/frame"
)

// Publisher is the part of the service a FramePublisher sends through.
type Publisher interface {
	PublishMessage(topic string, message []byte) error
	PublishJSON(topic string, messageType string, data interface{}) error
}

// FramePublisher is a targeting.OutputSink that publishes every frame as an
// AimFrame FlatBuffer. Frames of ticks with diagnostics are followed by a
// JSON diagnostics message.
type FramePublisher struct {
	publisher Publisher
	sessionID string
	builder   *flatbuffers.Builder
}

var _ targeting.OutputSink = (*FramePublisher)(nil)

// NewFramePublisher creates a publisher with a fresh session id.
func NewFramePublisher(publisher Publisher) *FramePublisher {
	return &FramePublisher{
		publisher: publisher,
		sessionID: uuid.NewString(),
		builder:   flatbuffers.NewBuilder(1024),
	}
}

// SessionID identifies this controller run in every published frame.
func (p *FramePublisher) SessionID() string {
	return p.sessionID
}

// Deliver encodes and publishes frame. It is only called from the tick loop.
func (p *FramePublisher) Deliver(ctx context.Context, frame targeting.Frame) error {
	data := EncodeFrame(p.builder, p.sessionID, frame)
	if err := p.publisher.PublishMessage(TopicFrame, data); err != nil {
		return fmt.Errorf("publish frame %d: %w", frame.Sequence, err)
	}
	return nil
}

// Observe publishes the diagnostics of a tick that had any.
func (p *FramePublisher) Observe(frame targeting.Frame, report targeting.Report) {
	if len(report.Diagnostics) == 0 {
		return
	}
	snap := inspection.NewSnapshot(frame, report)
	// Best effort; sink failures are already reported through the frame path
	_ = p.publisher.PublishJSON(TopicDiagnostics, MsgTypeDiagnostics, snap.Diagnostics)
}

// EncodeFrame serializes frame with builder. The returned slice is only valid
// until builder is used again.
func EncodeFrame(builder *flatbuffers.Builder, sessionID string, frame targeting.Frame) []byte {
	builder.Reset()

	aims := make([]flatbuffers.UOffsetT, len(frame.Fixtures))
	for i, f := range frame.Fixtures {
		name := builder.CreateString(f.Name)
		fb.FixtureAimStart(builder)
		fb.FixtureAimAddIndex(builder, uint16(f.Index))
		fb.FixtureAimAddName(builder, name)
		fb.FixtureAimAddPanChannel(builder, f.Pan.ID)
		fb.FixtureAimAddPan(builder, f.Pan.Value)
		fb.FixtureAimAddPanMax(builder, f.Pan.MaxValue)
		fb.FixtureAimAddTiltChannel(builder, f.Tilt.ID)
		fb.FixtureAimAddTilt(builder, f.Tilt.Value)
		fb.FixtureAimAddTiltMax(builder, f.Tilt.MaxValue)
		fb.FixtureAimAddDegenerate(builder, f.Degenerate)
		fb.FixtureAimAddOutOfRange(builder, f.OutOfRange)
		aims[i] = fb.FixtureAimEnd(builder)
	}

	fb.AimFrameStartFixturesVector(builder, len(aims))
	for i := len(aims) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(aims[i])
	}
	fixtures := builder.EndVector(len(aims))

	session := builder.CreateString(sessionID)
	fb.AimFrameStart(builder)
	fb.AimFrameAddSessionId(builder, session)
	fb.AimFrameAddSequence(builder, frame.Sequence)
	fb.AimFrameAddTimestampNs(builder, frame.Timestamp.UnixNano())
	fb.AimFrameAddTargetX(builder, frame.Target.X)
	fb.AimFrameAddTargetY(builder, frame.Target.Y)
	fb.AimFrameAddTargetZ(builder, frame.Target.Z)
	fb.AimFrameAddFixtures(builder, fixtures)
	fb.FinishAimFrameBuffer(builder, fb.AimFrameEnd(builder))

	return builder.FinishedBytes()
}

// DecodedFrame is the subscriber view of an AimFrame.
type DecodedFrame struct {
	SessionID string
	Frame     targeting.Frame
}

// DecodeFrame parses an AimFrame produced by EncodeFrame.
func DecodeFrame(data []byte) (decoded DecodedFrame, err error) {
	if len(data) < flatbuffers.SizeUOffsetT {
		return DecodedFrame{}, fmt.Errorf("%w: %d byte frame", ErrInvalidMessage, len(data))
	}
	defer func() {
		// Malformed offsets make the accessors index out of range
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvalidMessage, r)
		}
	}()

	msg := fb.GetRootAsAimFrame(data, 0)
	frame := targeting.Frame{
		Sequence:  msg.Sequence(),
		Timestamp: time.Unix(0, msg.TimestampNs()),
		Target:    targeting.Vector3{X: msg.TargetX(), Y: msg.TargetY(), Z: msg.TargetZ()},
		Fixtures:  make([]targeting.FixtureState, msg.FixturesLength()),
	}

	var aim fb.FixtureAim
	for i := range frame.Fixtures {
		if !msg.Fixtures(&aim, i) {
			continue
		}
		frame.Fixtures[i] = targeting.FixtureState{
			Index:      int(aim.Index()),
			Name:       string(aim.Name()),
			Pan:        targeting.Channel{ID: aim.PanChannel(), Value: aim.Pan(), MaxValue: aim.PanMax()},
			Tilt:       targeting.Channel{ID: aim.TiltChannel(), Value: aim.Tilt(), MaxValue: aim.TiltMax()},
			Degenerate: aim.Degenerate(),
			OutOfRange: aim.OutOfRange(),
		}
	}
	return DecodedFrame{SessionID: string(msg.SessionId()), Frame: frame}, nil
}
