package web

import (
	"reflect"
	"testing"
)

func TestLogBuffer_PartialLines(t *testing.T) {
	b := NewLogBuffer(10)
	_, _ = b.Write([]byte("first li"))
	_, _ = b.Write([]byte("ne\r\nsecond\n\nthi"))

	lines, dropped := b.Tail(0)
	if !reflect.DeepEqual(lines, []string{"first line", "second"}) || dropped != 0 {
		t.Fatalf("lines=%q dropped=%d", lines, dropped)
	}

	_, _ = b.Write([]byte("rd\n"))
	lines, _ = b.Tail(1)
	if !reflect.DeepEqual(lines, []string{"third"}) {
		t.Fatalf("lines=%q", lines)
	}
}

func TestLogBuffer_DropsOldest(t *testing.T) {
	b := NewLogBuffer(2)
	_, _ = b.Write([]byte("a\nb\nc\nd\n"))
	lines, dropped := b.Tail(10)
	if !reflect.DeepEqual(lines, []string{"c", "d"}) || dropped != 2 {
		t.Fatalf("lines=%q dropped=%d", lines, dropped)
	}
}
