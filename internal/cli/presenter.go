package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/ryotapoi/mdlinkify/internal/locale"
)

var header = color.New(color.Bold).SprintFunc()

// linePresenter prints hit titles as a short block: the note, the convert
// header and, with details on, one line per title.
type linePresenter struct {
	mu   sync.Mutex
	w    io.Writer
	msgs *locale.Table
}

func newLinePresenter(w io.Writer, msgs *locale.Table) *linePresenter {
	return &linePresenter{w: w, msgs: msgs}
}

func (p *linePresenter) ShowMatches(title string, hits []string, showDetails bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(hits) == 0 {
		fmt.Fprintf(p.w, "%s %s\n", info(title), dim(p.msgs.T(locale.NoMatches)))
		return
	}
	fmt.Fprintf(p.w, "%s %s (%d)\n", info(title), header(p.msgs.T(locale.ConvertAll)), len(hits))
	if !showDetails {
		return
	}
	for _, h := range hits {
		fmt.Fprintf(p.w, "  - %s\n", h)
	}
}
