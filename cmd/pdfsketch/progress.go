package main

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// progress 终端上的单行进度；输出不是终端时只在结束时打印
type progress struct {
	mu    sync.Mutex
	total int
	live  bool
	width int
}

func newProgress(total int) *progress {
	p := &progress{total: total}
	fd := int(os.Stderr.Fd())
	if term.IsTerminal(fd) {
		p.live = true
		if w, _, err := term.GetSize(fd); err == nil {
			p.width = w
		}
	}
	return p
}

func (p *progress) update(completed, total int) {
	if !p.live {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	line := fmt.Sprintf("rendering page %d/%d", completed, total)
	if p.width > 0 && len(line) > p.width-1 {
		line = line[:p.width-1]
	}
	fmt.Fprintf(os.Stderr, "\r%s", line)
}

func (p *progress) done() {
	if p.live {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
}
