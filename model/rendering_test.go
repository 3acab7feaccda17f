package model

import (
	"bytes"
	"testing"
)

func TestTerminalRendererDisplay(t *testing.T) {
	var buf bytes.Buffer
	r := &TerminalRenderer{Out: &buf}

	if err := r.Display(mustGrid(t, [][]bool{{T, F}, {F, T}})); err != nil {
		t.Fatalf("Display: %v", err)
	}

	want := gridPosBlock + gridPosEmpty + "\n" + gridPosEmpty + gridPosBlock + "\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}
