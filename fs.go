package fsop

import (
	"context"
	"io/fs"
)

// packFS checks for cancellation before every open and reports each file as
// it is read, so the codec's reads drive PackDir's progress.
type packFS struct {
	ctx   context.Context
	fsys  fs.FS
	cfg   *config
	total int
	done  int
}

func (p *packFS) Open(name string) (fs.File, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, err
	}
	f, err := p.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	p.done++
	p.cfg.emit(ProgressEvent{
		Stage:      StagePacking,
		Path:       name,
		FilesDone:  p.done,
		FilesTotal: p.total,
	})
	return f, nil
}
