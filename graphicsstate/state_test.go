package graphicsstate

import (
	"testing"

	"github.com/tsawler/pageblocks/model"
)

func TestNewStack(t *testing.T) {
	base := model.Matrix{1, 0, 0, -1, 0, 792}
	st := NewStack(base)

	if st.Current() != base {
		t.Errorf("expected current to equal base, got %v", st.Current())
	}
	if st.Restore() {
		t.Error("expected new stack to have nothing saved")
	}
	if st.Current() != base {
		t.Errorf("expected current to stay at base, got %v", st.Current())
	}
}

func TestStackConcat(t *testing.T) {
	st := NewStack(model.Identity())
	st.Concat(model.Translate(50, 50))
	st.Concat(model.Scale(100, 100))

	p := st.Current().Transform(model.Point{X: 1, Y: 1})
	if p.X != 150 || p.Y != 150 {
		t.Errorf("expected (150,150), got %+v", p)
	}
}

func TestStackConcatOverBase(t *testing.T) {
	// a flipping base transform applies after the content transform
	st := NewStack(model.Matrix{1, 0, 0, -1, 0, 100})
	st.Concat(model.Translate(10, 10))

	p := st.Current().Transform(model.Point{X: 0, Y: 0})
	if p.X != 10 || p.Y != 90 {
		t.Errorf("expected (10,90), got %+v", p)
	}
}

func TestStackSaveRestore(t *testing.T) {
	st := NewStack(model.Identity())
	st.Concat(model.Translate(5, 5))
	st.Save()
	st.Concat(model.Scale(2, 2))

	if !st.Restore() {
		t.Error("expected restore to pop a saved transform")
	}
	if st.Current() != model.Translate(5, 5) {
		t.Errorf("expected translate(5,5) after restore, got %v", st.Current())
	}
}

func TestStackRestoreEmptyResetsToBase(t *testing.T) {
	base := model.Scale(2, 2)
	st := NewStack(base)
	st.Concat(model.Translate(30, 40))

	if st.Restore() {
		t.Error("expected restore on empty stack to report false")
	}
	if st.Current() != base {
		t.Errorf("expected reset to base, got %v", st.Current())
	}
}

func TestStackNested(t *testing.T) {
	st := NewStack(model.Identity())
	st.Save()
	st.Concat(model.Translate(1, 0))
	st.Save()
	st.Concat(model.Translate(2, 0))
	st.Save()

	for i := 0; i < 3; i++ {
		if !st.Restore() {
			t.Fatalf("expected restore %d to pop a saved transform", i+1)
		}
		if i == 1 && st.Current() != model.Translate(1, 0) {
			t.Errorf("expected translate(1,0), got %v", st.Current())
		}
	}
	if !st.Current().IsIdentity() {
		t.Errorf("expected identity, got %v", st.Current())
	}
	if st.Restore() {
		t.Error("expected stack to be empty after three restores")
	}
}
