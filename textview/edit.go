package textview

// Type replaces the selection, if any, with r and leaves the caret
// after it.
func (v *View) Type(r rune) error {
	if err := v.cut(); err != nil {
		return err
	}
	q := v.caret
	if err := v.doc.Insert(q, string(r)); err != nil {
		return err
	}
	v.SetCaret(q + 1)
	return nil
}

// Backspace deletes the selection or the rune before the caret.
func (v *View) Backspace() error {
	if v.q0 != v.q1 {
		return v.cut()
	}
	if v.caret == 0 {
		return nil
	}
	q := v.caret
	if err := v.doc.Delete(q-1, q); err != nil {
		return err
	}
	v.SetCaret(q - 1)
	return nil
}

func (v *View) cut() error {
	if v.q0 == v.q1 {
		return nil
	}
	q0, q1 := v.q0, v.q1
	if err := v.doc.Delete(q0, q1); err != nil {
		return err
	}
	v.SetCaret(q0)
	return nil
}

// MoveCaret moves the caret dq runes, dropping the selection.
func (v *View) MoveCaret(dq int) {
	v.SetCaret(v.caret + dq)
}

// MoveLine moves the caret dl lines keeping its column where the
// target line is long enough.
func (v *View) MoveLine(dl int) {
	cur := v.doc.LineIndex(v.caret)
	from, err := v.doc.Line(cur)
	if err != nil {
		return
	}
	to, err := v.doc.Line(clamp(cur+dl, 0, v.doc.LineCount()-1))
	if err != nil {
		return
	}
	end := to.End
	if end > to.Start && end <= v.doc.Len() {
		if r, err := v.doc.Slice(end-1, end); err == nil && r[0] == '\n' {
			end--
		}
	}
	v.SetCaret(clamp(to.Start+v.caret-from.Start, to.Start, end))
}

// GotoLine puts the caret at the start of the 1-based line and scrolls
// to it.
func (v *View) GotoLine(line int) {
	ln, err := v.doc.Line(clamp(line-1, 0, v.doc.LineCount()-1))
	if err != nil {
		return
	}
	v.SetCaret(ln.Start)
	v.Show(ln.Start)
}
