package module

import (
	"testing"

	phttp "storeuptime/internal/platform/net/http"
	"storeuptime/internal/platform/testkit"
)

type submitter interface{ Submit() string }
type retriever interface{ Retrieve() string }

type svc struct{}

func (svc) Submit() string { return "id" }

type portSet struct {
	Submit submitter
	hidden retriever
}

type fakeModule struct{ ports any }

func (fakeModule) MountRoutes(phttp.Router) {}
func (f fakeModule) Ports() any             { return f.ports }
func (fakeModule) Name() string             { return "reports" }

func TestPortsOf(t *testing.T) {
	if v, ok := PortsOf[submitter](fakeModule{ports: svc{}}); !ok || v.Submit() != "id" {
		t.Fatalf("direct port not found")
	}
	if _, ok := PortsOf[submitter](fakeModule{ports: &portSet{Submit: svc{}}}); !ok {
		t.Fatalf("field port behind pointer not found")
	}
	if _, ok := PortsOf[retriever](fakeModule{ports: portSet{}}); ok {
		t.Fatalf("unexported field must not be visible")
	}
	if _, ok := PortsOf[submitter](fakeModule{}); ok {
		t.Fatalf("nil ports must not match")
	}
	if _, ok := PortsOf[submitter](fakeModule{ports: (*portSet)(nil)}); ok {
		t.Fatalf("nil pointer ports must not match")
	}
	testkit.MustPanic(t, func() { MustPortsOf[retriever](fakeModule{ports: 3}) })
}

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("reports", portSet{Submit: svc{}})
	if p, ok := PortsAs[portSet]("reports"); !ok || p.Submit == nil {
		t.Fatalf("PortsAs lost the port set")
	}
	if _, ok := PortsAs[int]("reports"); ok {
		t.Fatalf("wrong type must not assert")
	}
	if _, ok := PortsAs[portSet]("meta"); ok {
		t.Fatalf("unknown name must miss")
	}
}
