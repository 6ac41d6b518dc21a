package zeromq

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pebbe/zmq4"

	"github.com/open-teleop/movingheads/domain/inspection"
	"github.com/open-teleop/movingheads/domain/targeting"
	"github.com/open-teleop/movingheads/pkg/config"
	customlog "github.com/open-teleop/movingheads/pkg/log"
)

const loopback = "tcp://127.0.0.1:*"

type fakeProvider struct {
	mu   sync.Mutex
	snap inspection.Snapshot
	ok   bool
}

func (p *fakeProvider) Latest() (inspection.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap, p.ok
}

type fakeWriter struct {
	mu      sync.Mutex
	samples []r3.Vector
}

func (w *fakeWriter) Set(sample r3.Vector) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.samples = append(w.samples, sample)
}

func (w *fakeWriter) last() (r3.Vector, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.samples) == 0 {
		return r3.Vector{}, false
	}
	return w.samples[len(w.samples)-1], true
}

func newTestService(t *testing.T, cfg config.ZeroMQBootstrap, samples SampleWriter) *ZeroMQService {
	t.Helper()
	if cfg.RequestBindAddress == "" {
		cfg.RequestBindAddress = loopback
	}
	if cfg.PublishBindAddress == "" {
		cfg.PublishBindAddress = loopback
	}
	svc, err := NewZeroMQService(cfg, samples, customlog.NewDiscardLogger())
	if err != nil {
		t.Fatalf("NewZeroMQService failed: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

// request sends one JSON request on a fresh REQ socket and decodes the reply.
func request(t *testing.T, endpoint string, msgType string) ZeroMQMessage {
	t.Helper()
	socket, err := zmq4.NewSocket(zmq4.REQ)
	if err != nil {
		t.Fatalf("Failed to create REQ socket: %v", err)
	}
	defer socket.Close()
	socket.SetLinger(0)
	socket.SetRcvtimeo(5 * time.Second)

	if err := socket.Connect(endpoint); err != nil {
		t.Fatalf("Failed to connect to %s: %v", endpoint, err)
	}

	reqData, _ := json.Marshal(ZeroMQMessage{Type: msgType, Timestamp: float64(time.Now().Unix())})
	if _, err := socket.SendBytes(reqData, 0); err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}

	respData, err := socket.RecvBytes(0)
	if err != nil {
		t.Fatalf("Failed to receive response: %v", err)
	}

	var resp ZeroMQMessage
	if err := json.Unmarshal(respData, &resp); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	return resp
}

func TestSnapshotRequestRoundTrip(t *testing.T) {
	provider := &fakeProvider{}
	svc := newTestService(t, config.ZeroMQBootstrap{}, nil)
	RegisterSnapshotHandler(svc, provider, customlog.NewDiscardLogger())
	if err := svc.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	resp := request(t, svc.RequestEndpoint(), MsgTypeSnapshotRequest)
	if resp.Type != MsgTypeSnapshotResponse {
		t.Fatalf("response type = %s", resp.Type)
	}
	if data, _ := resp.Data.(map[string]interface{}); data["ready"] != false {
		t.Errorf("expected ready=false before the first tick, got %v", resp.Data)
	}

	provider.mu.Lock()
	provider.snap = inspection.Snapshot{Sequence: 42, Target: inspection.Vec{X: 1}}
	provider.ok = true
	provider.mu.Unlock()

	resp = request(t, svc.RequestEndpoint(), MsgTypeSnapshotRequest)
	data, _ := resp.Data.(map[string]interface{})
	snap, _ := data["snapshot"].(map[string]interface{})
	if data["ready"] != true || snap["sequence"] != float64(42) {
		t.Errorf("unexpected snapshot response %v", resp.Data)
	}
}

func TestUnknownRequestGetsError(t *testing.T) {
	svc := newTestService(t, config.ZeroMQBootstrap{}, nil)
	svc.Start()

	resp := request(t, svc.RequestEndpoint(), "CONFIG_REQUEST")
	if resp.Type != MsgTypeError {
		t.Fatalf("response type = %s, want %s", resp.Type, MsgTypeError)
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["code"] != float64(400) {
		t.Errorf("error code = %v, want 400", data["code"])
	}
}

func TestFramesArePublished(t *testing.T) {
	svc := newTestService(t, config.ZeroMQBootstrap{}, nil)
	svc.Start()

	sub, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		t.Fatalf("Failed to create SUB socket: %v", err)
	}
	defer sub.Close()
	sub.SetLinger(0)
	sub.SetRcvtimeo(20 * time.Millisecond)
	sub.SetSubscribe(TopicFrame)
	if err := sub.Connect(svc.PublishEndpoint()); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	publisher := NewFramePublisher(svc)
	frame := targeting.Frame{Sequence: 5, Timestamp: time.Unix(0, 1234), Target: targeting.Vector3{Z: 2}}

	// PUB drops messages until the subscription has propagated
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := publisher.Deliver(context.Background(), frame); err != nil {
			t.Fatalf("Deliver failed: %v", err)
		}
		parts, err := sub.RecvMessageBytes(0)
		if err != nil {
			continue
		}
		if string(parts[0]) != TopicFrame {
			t.Fatalf("topic = %s", parts[0])
		}
		decoded, err := DecodeFrame(parts[1])
		if err != nil {
			t.Fatalf("DecodeFrame failed: %v", err)
		}
		if decoded.Frame.Sequence != 5 || decoded.SessionID != publisher.SessionID() {
			t.Errorf("unexpected frame %+v", decoded)
		}
		return
	}
	t.Fatal("no frame received")
}

func TestPublishAfterStopFails(t *testing.T) {
	svc := newTestService(t, config.ZeroMQBootstrap{}, nil)
	svc.Start()
	svc.Stop()

	if err := svc.PublishMessage(TopicFrame, []byte("x")); err != ErrServiceClosed {
		t.Errorf("PublishMessage after Stop = %v, want ErrServiceClosed", err)
	}
}

func TestSampleListenerFeedsWriter(t *testing.T) {
	pub, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		t.Fatalf("Failed to create PUB socket: %v", err)
	}
	defer pub.Close()
	pub.SetLinger(0)
	if err := pub.Bind(loopback); err != nil {
		t.Fatalf("Failed to bind: %v", err)
	}
	endpoint, _ := pub.GetLastEndpoint()

	writer := &fakeWriter{}
	svc := newTestService(t, config.ZeroMQBootstrap{SampleConnectAddress: endpoint}, writer)
	svc.Start()

	bad, _ := json.Marshal(ZeroMQMessage{Type: "NOT_A_SAMPLE"})
	good, _ := json.Marshal(ZeroMQMessage{Type: MsgTypeVelocitySample, Data: VelocitySample{X: 0.5, Y: -1, Z: 0.25}})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		pub.SendMessage(TopicSample, bad)
		pub.SendMessage(TopicSample, good)
		if got, ok := writer.last(); ok {
			if got != (r3.Vector{X: 0.5, Y: -1, Z: 0.25}) {
				t.Errorf("sample = %v", got)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no sample received")
}

func TestDecodeSampleRejectsGarbage(t *testing.T) {
	if _, err := decodeSample([]byte("{")); err == nil {
		t.Errorf("expected error for malformed JSON")
	}
}
