package nimbuslog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpy_RecordsByLevel(t *testing.T) {
	spy := &Spy{}
	spy.Info(Record{Message: "registered", Category: "router.register"})
	spy.Error(Record{Message: "failed", Err: errors.New("boom")})

	assert.Len(t, spy.Infos, 1)
	assert.Len(t, spy.Errors, 1)
	assert.Equal(t, 2, spy.Count())
}

func TestNop_DiscardsEverything(t *testing.T) {
	var l Logger = Nop{}
	l.Debug(Record{Message: "x"})
	l.Critical(Record{Message: "y"})
}

func TestZapLogger_DoesNotPanicOnCritical(t *testing.T) {
	l := NewZapLogger(nil)
	l.Critical(Record{Message: "critical thing", Data: map[string]any{"k": "v"}})
}
