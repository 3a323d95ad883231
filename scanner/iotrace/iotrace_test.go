package iotrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunClassifiesBinaryWriter(t *testing.T) {
	src := []byte(`function send(x){var b=Buffer.alloc(4);b.writeUInt32LE(x.length);process.stdout.write(b)}`)
	trace, err := Run(src, "process.stdout.write")
	assert.NoError(t, err)
	if assert.Len(t, trace.Writers, 1) {
		assert.Equal(t, TransportBinary, trace.Writers[0].Transport)
	}
}

func TestRunClassifiesJSONNLWriter(t *testing.T) {
	src := []byte(`function send(x){process.stdout.write(JSON.stringify(x)+"\n")}`)
	trace, err := Run(src, "process.stdout.write")
	assert.NoError(t, err)
	if assert.Len(t, trace.Writers, 1) {
		assert.Equal(t, TransportJSONNL, trace.Writers[0].Transport)
	}
}

func TestRunClassifiesTextWriter(t *testing.T) {
	src := []byte(`process.stdout.write("hello")`)
	trace, _ := Run(src, "process.stdout.write")
	if assert.Len(t, trace.Writers, 1) {
		assert.Equal(t, TransportText, trace.Writers[0].Transport)
	}
}

func TestRunFindsReaders(t *testing.T) {
	src := []byte(`rl.on('line',function(l){});readline.createInterface({})`)
	trace, _ := Run(src, "nonexistent_channel")
	assert.Len(t, trace.Readers, 2)
}

func TestRunWarnsOnProtocolMismatch(t *testing.T) {
	src := []byte(`function send(x){var b=Buffer.alloc(4);b.writeUInt32LE(x);ch.write(b)}
rl.on('line',function(l){console.log(l)})`)
	trace, _ := Run(src, "ch.write")
	assert.Len(t, trace.Warnings, 1)
	assert.Equal(t, "ProtocolMismatch", trace.Warnings[0].Kind)
}
