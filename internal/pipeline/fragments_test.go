package pipeline

import "testing"

// ---------------------------------------------------------------------------
// TestFragmentsRestore - Placeholder restoration
// ---------------------------------------------------------------------------

func TestFragmentsRestore(t *testing.T) {
	t.Parallel()

	t.Run("inline tokens", func(t *testing.T) {
		t.Parallel()

		f := &fragments{}
		in := "<p>a " + f.inline("<b>") + "x" + f.inline("</b>") + "</p>"
		if got, want := f.restore(in), "<p>a <b>x</b></p>"; got != want {
			t.Errorf("restore() = %q, want %q", got, want)
		}
	})

	t.Run("block token unwraps its paragraph", func(t *testing.T) {
		t.Parallel()

		f := &fragments{}
		token := f.block("<figure>f</figure>")
		in := "<p>" + token[2:len(token)-2] + "</p>\n<p>after</p>\n"
		if got, want := f.restore(in), "<figure>f</figure>\n<p>after</p>\n"; got != want {
			t.Errorf("restore() = %q, want %q", got, want)
		}
	})

	t.Run("inline token alone keeps its paragraph", func(t *testing.T) {
		t.Parallel()

		f := &fragments{}
		in := "<p>" + f.inline("<span>s</span>") + "</p>\n"
		if got, want := f.restore(in), "<p><span>s</span></p>\n"; got != want {
			t.Errorf("restore() = %q, want %q", got, want)
		}
	})

	t.Run("nested tokens", func(t *testing.T) {
		t.Parallel()

		f := &fragments{}
		inner := f.inline("<i>in</i>")
		outer := f.inline("<b>" + inner + "</b>")
		if got, want := f.restore(outer), "<b><i>in</i></b>"; got != want {
			t.Errorf("restore() = %q, want %q", got, want)
		}
	})

	t.Run("unknown index kept", func(t *testing.T) {
		t.Parallel()

		f := &fragments{}
		in := fragmentStart + "7" + fragmentEnd
		if got := f.restore(in); got != in {
			t.Errorf("restore() = %q, want unchanged", got)
		}
	})

	t.Run("self reference stops at max depth", func(t *testing.T) {
		t.Parallel()

		f := &fragments{}
		f.items = append(f.items, fragment{html: fragmentStart + "0" + fragmentEnd})
		_ = f.restore(fragmentStart + "0" + fragmentEnd)
	})
}
