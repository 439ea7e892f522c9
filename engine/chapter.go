package engine

import (
	"math"
	"slices"
)

// ChapterNone is the current chapter when no chapter covers the position.
const ChapterNone = -2

// Chapter is a named point on the timeline. Time is in milliseconds.
type Chapter struct {
	ID    int
	Time  int
	Title string
}

// ChapterList is ordered by time.
type ChapterList []Chapter

func (l ChapterList) Equal(o ChapterList) bool {
	return slices.Equal(l, o)
}

// withSentinels returns the lookup list for real: a chapter -1 at -inf first and
// a chapter last+1 at +inf last. An empty list stays empty.
func withSentinels(real ChapterList) ChapterList {
	if len(real) == 0 {
		return nil
	}

	out := make(ChapterList, 0, len(real)+2)
	out = append(out, Chapter{ID: -1, Time: math.MinInt})
	out = append(out, real...)
	out = append(out, Chapter{ID: real[len(real)-1].ID + 1, Time: math.MaxInt})
	return out
}

// chapterCursor resolves positions against a sentinel-augmented list,
// remembering where the previous lookup matched.
type chapterCursor struct {
	list  ChapterList
	index int
}

func (c *chapterCursor) reset(real ChapterList) {
	c.list = withSentinels(real)
	c.index = -1
}

// rewind makes the next lookup scan from the start, after a seek.
func (c *chapterCursor) rewind() {
	c.index = -1
}

// covers reports whether entry i owns pos: [time(i), time(i+1)), with the last
// real chapter owning everything up to and including +inf.
func (c *chapterCursor) covers(i, pos int) bool {
	if c.list[i].Time > pos {
		return false
	}
	return pos < c.list[i+1].Time || i+1 == len(c.list)-1
}

// resolve returns the id of the chapter containing pos, or ChapterNone.
// The scan starts at the previous match and wraps around, so ordered ticks
// are found immediately and backward seeks still resolve.
func (c *chapterCursor) resolve(pos int) int {
	n := len(c.list)
	if n < 2 {
		c.index = -1
		return ChapterNone
	}

	start := max(c.index, 0)
	for i := start; i < n-1; i++ {
		if c.covers(i, pos) {
			c.index = i
			return c.list[i].ID
		}
	}
	for i := 0; i < start; i++ {
		if c.covers(i, pos) {
			c.index = i
			return c.list[i].ID
		}
	}

	c.index = -1
	return ChapterNone
}
