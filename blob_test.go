package mosaicdb

import (
	"bytes"
	"testing"
)

func expectLogicErrorPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		recovered := recover()
		if recovered == nil {
			t.Fatal("expected a panic")
		}
		if _, ok := recovered.(*LogicError); !ok {
			t.Fatalf("expected LogicError, got %T (%v)", recovered, recovered)
		}
	}()
	fn()
}

func TestByteSinkCollectsChunks(t *testing.T) {
	sink := &ByteSink{}
	if sink.HasData() {
		t.Error("fresh sink must not report data")
	}

	if !sink.Reserve(6) {
		t.Fatal("Reserve failed")
	}
	sink.WriteChunk(0, []byte{1, 2, 3})
	sink.WriteChunk(3, []byte{4, 5, 6})

	if !sink.HasData() {
		t.Error("reserved sink must report data")
	}
	if !bytes.Equal(sink.Data(), []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("Data() = %v, expected 1..6", sink.Data())
	}
}

func TestByteSinkZeroReserve(t *testing.T) {
	sink := &ByteSink{}
	if !sink.Reserve(0) {
		t.Fatal("Reserve(0) failed")
	}
	if len(sink.Data()) != 0 {
		t.Errorf("expected empty data, got %d bytes", len(sink.Data()))
	}
}

func TestByteSinkDoubleReserve(t *testing.T) {
	sink := &ByteSink{}
	sink.Reserve(4)
	expectLogicErrorPanic(t, func() { sink.Reserve(4) })
}

func TestByteSinkWriteBeforeReserve(t *testing.T) {
	sink := &ByteSink{}
	expectLogicErrorPanic(t, func() { sink.WriteChunk(0, []byte{1}) })
}

func TestByteSinkWriteOutOfBounds(t *testing.T) {
	sink := &ByteSink{}
	sink.Reserve(4)
	expectLogicErrorPanic(t, func() { sink.WriteChunk(2, []byte{1, 2, 3}) })
}

func TestBytesSource(t *testing.T) {
	payload := []byte{9, 8, 7}
	source := BytesSource{Data: payload}
	if !bytes.Equal(source.Bytes(), payload) {
		t.Errorf("Bytes() = %v, expected %v", source.Bytes(), payload)
	}
}
