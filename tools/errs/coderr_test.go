package errs

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestWrapMsgKeepsCode(t *testing.T) {
	err := ErrNoPermission.WrapMsg("not a participant", "conversation", "conv-a")

	if !errors.Is(err, ErrNoPermission) {
		t.Fatal("wrapped error lost its code identity")
	}
	if errors.Is(err, ErrArgs) {
		t.Fatal("wrapped error matches a different code")
	}
	if CodeOf(err) != NoPermissionError {
		t.Fatalf("CodeOf = %d, want %d", CodeOf(err), NoPermissionError)
	}

	ce, ok := AsCode(err)
	if !ok {
		t.Fatal("AsCode failed on a wrapped code error")
	}
	if ce.Code != NoPermissionError || !strings.Contains(ce.Detail, "conv-a") {
		t.Fatalf("extracted = %+v", ce)
	}
}

func TestWrapMsgDoesNotMutateTemplate(t *testing.T) {
	_ = ErrArgs.WrapMsg("first", "k", "v")
	_ = ErrArgs.WrapMsg("second")
	if ErrArgs.Detail != "" {
		t.Fatalf("template detail mutated to %q", ErrArgs.Detail)
	}
}

func TestWithDetailAccumulates(t *testing.T) {
	e := ErrStorage.WithDetail("timeout").WithDetail("retrying")
	if e.Detail != "timeout, retrying" {
		t.Fatalf("detail = %q", e.Detail)
	}
	if ErrStorage.Detail != "" {
		t.Fatal("template mutated")
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if CodeOf(errors.New("boom")) != ServerInternalError {
		t.Fatal("plain error must report as internal")
	}
	if _, ok := AsCode(errors.New("boom")); ok {
		t.Fatal("AsCode matched a plain error")
	}
}

func TestErrorString(t *testing.T) {
	err := ErrArgs.WrapMsg("empty body")
	s := err.Error()
	if !strings.Contains(s, "1001") || !strings.Contains(s, "empty body") {
		t.Fatalf("error string = %q", s)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Fatal("Wrap(nil) != nil")
	}
	if WrapMsg(nil, "ctx") != nil {
		t.Fatal("WrapMsg(nil) != nil")
	}
}
