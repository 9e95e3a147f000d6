package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeReference, http.StatusInternalServerError},
		{ErrorCodeParse, http.StatusInternalServerError},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestErrorRenderingAndUnwrap(t *testing.T) {
	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Fatalf("nil render = %q", nilErr.Error())
	}

	cause := stderrs.New("dial tcp: refused")
	err := Wrapf(cause, ErrorCodeUnavailable, "load store %s", "s1")
	if err.Error() != "load store s1: dial tcp: refused" {
		t.Fatalf("render = %q", err.Error())
	}
	if !stderrs.Is(err, cause) || Root(err) != cause {
		t.Fatalf("cause lost")
	}

	outer := fmt.Errorf("job: %w", err)
	if CodeOf(outer) != ErrorCodeUnavailable || HTTPStatus(outer) != http.StatusServiceUnavailable {
		t.Fatalf("code not found through fmt wrap")
	}
	if CodeOf(cause) != ErrorCodeUnknown {
		t.Fatalf("foreign error must be unknown")
	}
}

func TestWireDropsCause(t *testing.T) {
	err := WithField(Wrap(stderrs.New("secret dsn"), ErrorCodeValidation, "bad id"), "report_id")
	w := WireFrom(err)
	if w.Code != ErrorCodeValidation || w.Message != "bad id" || w.Field != "report_id" {
		t.Fatalf("wire = %+v", w)
	}
	if (WireFrom(nil) != Wire{}) {
		t.Fatalf("nil wire must be zero")
	}
	if w := WireFrom(stderrs.New("plain")); w.Code != ErrorCodeUnknown || w.Message != "plain" {
		t.Fatalf("foreign wire = %+v", w)
	}
	status, body := HTTP(NotFoundf("report %s", "x"))
	if status != http.StatusNotFound || body.Message != "report x" {
		t.Fatalf("HTTP = %d %+v", status, body)
	}
	if status, _ := HTTP(nil); status != http.StatusOK {
		t.Fatalf("HTTP(nil) = %d", status)
	}
}

func TestMutatorsCopyOnWrite(t *testing.T) {
	base := Referencef("store %s has no timezone", "s1")
	named := WithOp(base, "builder.timezone")
	if e, _ := As(base); e.Op() != "" {
		t.Fatalf("base mutated")
	}
	if e, _ := As(named); e.Op() != "builder.timezone" || e.Code() != ErrorCodeReference {
		t.Fatalf("op not set: %+v", e)
	}
	foreign := stderrs.New("x")
	if WithField(foreign, "f") != foreign || WithOp(foreign, "o") != foreign {
		t.Fatalf("foreign errors must pass through")
	}
}

func TestSugarCodes(t *testing.T) {
	cases := map[ErrorCode]error{
		ErrorCodeNotFound:        NotFoundf("x"),
		ErrorCodeInvalidArgument: InvalidArgf("x"),
		ErrorCodeValidation:      Validationf("x"),
		ErrorCodeJSON:            JSONErrf("x"),
		ErrorCodeReference:       Referencef("x"),
		ErrorCodeParse:           Parsef("x"),
		ErrorCodeConflict:        Conflictf("x"),
		ErrorCodeUnavailable:     Unavailablef("x"),
		ErrorCodePanic:           PanicErrf("x"),
		ErrorCodeUnknown:         Internalf("x"),
	}
	for want, err := range cases {
		if !IsCode(err, want) {
			t.Fatalf("%v: got %v", want, CodeOf(err))
		}
	}
	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatalf("WrapIf(nil) must be nil")
	}
	if ErrorCodeReference.String() != "reference" || ErrorCode(500).String() != "code(500)" {
		t.Fatalf("String mapping broken")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) {
		t.Fatalf("nil is not retryable")
	}
	if !Retryable(Unavailablef("redis down")) {
		t.Fatalf("unavailable should be retryable")
	}
	if Retryable(Wrap(context.Canceled, ErrorCodeUnavailable, "stopped")) {
		t.Fatalf("cancellation must not be retried")
	}
	if Retryable(NotFoundf("nope")) {
		t.Fatalf("not found is final")
	}
}
