package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
)

// ProgramLRU keeps recently read programs in process. Entries are deep copies
// so callers can't mutate what other requests see.
type ProgramLRU struct {
	cache *lru.Cache[string, *model.Program]
}

// NewProgramLRU creates a cache holding up to size programs
func NewProgramLRU(size int) (*ProgramLRU, error) {
	c, err := lru.New[string, *model.Program](size)
	if err != nil {
		return nil, fmt.Errorf("program cache: %w", err)
	}
	return &ProgramLRU{cache: c}, nil
}

func (p *ProgramLRU) Get(id string) (*model.Program, bool) {
	prog, ok := p.cache.Get(id)
	if !ok {
		return nil, false
	}
	return copyProgram(prog), true
}

func (p *ProgramLRU) Add(prog *model.Program) {
	if prog == nil || prog.ID == "" {
		return
	}
	p.cache.Add(prog.ID, copyProgram(prog))
}

func (p *ProgramLRU) Remove(id string) {
	p.cache.Remove(id)
}

func (p *ProgramLRU) Len() int {
	return p.cache.Len()
}

func copyProgram(p *model.Program) *model.Program {
	out := *p
	out.Requirements = p.Requirements.Clone()
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		out.PublishedAt = &t
	}
	return &out
}
