package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunTraceIO(t *testing.T) {
	file := writeTempBundle(t, `ws.send(JSON.stringify({channel:"telemetry_queue",data:1}));ws.onmessage=function(e){console.log(e.data)}`)
	err := runTraceIO(traceIOCmd, []string{file, "telemetry_queue"})
	assert.NoError(t, err)
}
