// Package servicetest provides in-memory stand-ins for the stores behind the
// services, for tests that should not need MongoDB, Redis, Postgres or MinIO.
package servicetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/StudentTechUsher/stuV1.0-sub000/internal/cache"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/model"
	"github.com/StudentTechUsher/stuV1.0-sub000/internal/requirements"
)

// ProgramRepo stores programs in a map, numbering them p1, p2, ...
type ProgramRepo struct {
	mu       sync.Mutex
	programs map[string]*model.Program
	next     int
	Reads    int
	Updates  int
}

func NewProgramRepo() *ProgramRepo {
	return &ProgramRepo{programs: map[string]*model.Program{}}
}

func cloneProgram(p *model.Program) *model.Program {
	out := *p
	out.Requirements = p.Requirements.Clone()
	return &out
}

func (r *ProgramRepo) Create(ctx context.Context, p *model.Program) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	p.ID = fmt.Sprintf("p%d", r.next)
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	r.programs[p.ID] = cloneProgram(p)
	return p.ID, nil
}

func (r *ProgramRepo) GetByID(ctx context.Context, id string) (*model.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reads++
	p, ok := r.programs[id]
	if !ok {
		return nil, nil
	}
	return cloneProgram(p), nil
}

func (r *ProgramRepo) List(ctx context.Context) ([]*model.Program, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Program{}
	for i := 1; i <= r.next; i++ {
		if p, ok := r.programs[fmt.Sprintf("p%d", i)]; ok {
			out = append(out, cloneProgram(p))
		}
	}
	return out, nil
}

func (r *ProgramRepo) Update(ctx context.Context, p *model.Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[p.ID]; !ok {
		return errors.New("no such program")
	}
	r.Updates++
	p.UpdatedAt = time.Now().UTC()
	r.programs[p.ID] = cloneProgram(p)
	return nil
}

func (r *ProgramRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.programs, id)
	return nil
}

// DraftCache keeps drafts in a map without expiry
type DraftCache struct {
	mu     sync.Mutex
	drafts map[string]*model.Draft
}

func NewDraftCache() *DraftCache {
	return &DraftCache{drafts: map[string]*model.Draft{}}
}

func (c *DraftCache) Get(ctx context.Context, programID string) (*model.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.drafts[programID]
	if !ok {
		return nil, nil
	}
	out := *d
	out.Requirements = d.Requirements.Clone()
	return &out, nil
}

func (c *DraftCache) Set(ctx context.Context, d *model.Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := *d
	out.Requirements = d.Requirements.Clone()
	c.drafts[d.ProgramID] = &out
	return nil
}

func (c *DraftCache) SetIfRevision(ctx context.Context, d *model.Draft, expected int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := 0
	if stored, ok := c.drafts[d.ProgramID]; ok {
		current = stored.Revision
	}
	if current != expected {
		return cache.ErrRevisionMismatch
	}
	out := *d
	out.Requirements = d.Requirements.Clone()
	c.drafts[d.ProgramID] = &out
	return nil
}

func (c *DraftCache) Delete(ctx context.Context, programID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drafts, programID)
	return nil
}

func (c *DraftCache) Exists(ctx context.Context, programID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.drafts[programID]
	return ok, nil
}

// ProgressCache records which programs and students were invalidated
type ProgressCache struct {
	mu                  sync.Mutex
	entries             map[string]*model.ProgramProgress
	InvalidatedPrograms []string
	InvalidatedStudents []string
}

func NewProgressCache() *ProgressCache {
	return &ProgressCache{entries: map[string]*model.ProgramProgress{}}
}

func (c *ProgressCache) Get(ctx context.Context, programID, studentID string) (*model.ProgramProgress, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[programID+"/"+studentID], nil
}

func (c *ProgressCache) Set(ctx context.Context, p *model.ProgramProgress) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[p.ProgramID+"/"+p.StudentID] = p
	return nil
}

func (c *ProgressCache) InvalidateStudent(ctx context.Context, studentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.InvalidatedStudents = append(c.InvalidatedStudents, studentID)
	for k := range c.entries {
		if strings.HasSuffix(k, "/"+studentID) {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *ProgressCache) InvalidateProgram(ctx context.Context, programID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.InvalidatedPrograms = append(c.InvalidatedPrograms, programID)
	for k := range c.entries {
		if strings.HasPrefix(k, programID+"/") {
			delete(c.entries, k)
		}
	}
	return nil
}

// TranscriptRepo keeps transcripts by student ID
type TranscriptRepo struct {
	mu          sync.Mutex
	Transcripts map[string]*model.Transcript
}

func NewTranscriptRepo() *TranscriptRepo {
	return &TranscriptRepo{Transcripts: map[string]*model.Transcript{}}
}

func (r *TranscriptRepo) Get(ctx context.Context, studentID string) (*model.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Transcripts[studentID], nil
}

func (r *TranscriptRepo) Save(ctx context.Context, t *model.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Transcripts[t.StudentID] = t
	return nil
}

// Catalog looks courses up by canonical code
type Catalog struct {
	courses map[string]model.Course
}

func NewCatalog(courses ...model.Course) *Catalog {
	c := &Catalog{courses: map[string]model.Course{}}
	for _, course := range courses {
		c.courses[requirements.CanonicalCode(course.Code)] = course
	}
	return c
}

func (c *Catalog) Lookup(ctx context.Context, code string) (*model.Course, error) {
	course, ok := c.courses[requirements.CanonicalCode(code)]
	if !ok {
		return nil, nil
	}
	return &course, nil
}

func (c *Catalog) Search(ctx context.Context, prefix string, limit int) ([]model.Course, error) {
	out := []model.Course{}
	for key, course := range c.courses {
		if strings.HasPrefix(key, requirements.CanonicalCode(prefix)) {
			out = append(out, course)
		}
	}
	return out, nil
}

func (c *Catalog) Close() {}

// Archive keeps snapshots in memory; set Fail to simulate an outage
type Archive struct {
	mu        sync.Mutex
	Snapshots map[string][]byte
	Fail      bool
}

func NewArchive() *Archive {
	return &Archive{Snapshots: map[string][]byte{}}
}

func (a *Archive) PutSnapshot(ctx context.Context, programID string, version int, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Fail {
		return "", errors.New("archive down")
	}
	key := fmt.Sprintf("programs/%s/v%06d.json", programID, version)
	a.Snapshots[key] = data
	return key, nil
}

func (a *Archive) GetSnapshot(ctx context.Context, key string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Snapshots[key], nil
}

func (a *Archive) ListSnapshots(ctx context.Context, programID string) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []string{}
	for k := range a.Snapshots {
		if strings.HasPrefix(k, "programs/"+programID+"/") {
			out = append(out, k)
		}
	}
	return out, nil
}

// Message is one recorded broadcast
type Message struct {
	ProgramID string
	Type      string
	Payload   interface{}
}

// Broadcaster records what would have been sent to open panels
type Broadcaster struct {
	mu           sync.Mutex
	Sent         []Message
	Disconnected []string
}

func (b *Broadcaster) BroadcastToProgram(programID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sent = append(b.Sent, Message{programID, msgType, payload})
}

func (b *Broadcaster) DisconnectProgram(programID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Disconnected = append(b.Disconnected, programID)
}

// Types lists the message types sent so far, in order
func (b *Broadcaster) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []string{}
	for _, m := range b.Sent {
		out = append(out, m.Type)
	}
	return out
}
