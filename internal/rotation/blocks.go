package rotation

import (
	"time"

	"github.com/ramunasnognys/offshore-mate-v3/pkg/dateutil"
)

// Block is one on-duty block. Start is inclusive, End is exclusive,
// matching all-day calendar events.
type Block struct {
	Start time.Time
	End   time.Time
}

// Days returns the block length in days
func (b Block) Days() int {
	return dateutil.DaysBetween(b.Start, b.End)
}

// Contains reports whether date falls inside the block
func (b Block) Contains(date time.Time) bool {
	d := dateutil.Date(date)
	return !d.Before(b.Start) && d.Before(b.End)
}

// OnDutyBlocks returns the first n on-duty blocks starting at the anchor,
// in ascending order. Blocks never overlap because OffDays is at least 1.
func OnDutyBlocks(cfg Config, cycles int) []Block {
	if cycles <= 0 {
		return nil
	}
	blocks := make([]Block, 0, cycles)
	for i := 0; i < cycles; i++ {
		blocks = append(blocks, blockAt(cfg, i))
	}
	return blocks
}

// BlocksBetween returns every block that intersects [from, to)
func BlocksBetween(cfg Config, from, to time.Time) []Block {
	from, to = dateutil.Date(from), dateutil.Date(to)
	if !from.Before(to) {
		return nil
	}

	length := cfg.Pattern.CycleLength()
	i := 0
	if diff := dateutil.DaysBetween(cfg.Anchor, from); diff > 0 {
		i = diff / length
	}

	var blocks []Block
	for ; ; i++ {
		b := blockAt(cfg, i)
		if !b.Start.Before(to) {
			break
		}
		if b.End.After(from) {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func blockAt(cfg Config, i int) Block {
	start := cfg.Anchor.AddDate(0, 0, i*cfg.Pattern.CycleLength())
	return Block{Start: start, End: start.AddDate(0, 0, cfg.Pattern.OnDays)}
}
