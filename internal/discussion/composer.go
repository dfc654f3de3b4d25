package discussion

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/VitaminP8/discuss/internal/model"
)

type ComposerState int

const (
	ComposerCollapsed ComposerState = iota
	ComposerExpanded
	ComposerSubmitting
)

func (s ComposerState) String() string {
	switch s {
	case ComposerExpanded:
		return "expanded"
	case ComposerSubmitting:
		return "submitting"
	}
	return "collapsed"
}

type ComposerMode int

const (
	ComposeReply ComposerMode = iota
	ComposeEdit
)

var ErrComposerState = errors.New("composer: transition not allowed")

// Composer - состояние формы ответа/редактирования одного узла.
//
//	Collapsed -> Expanded (открыли) -> Submitting (отправили)
//	Submitting -> Collapsed (успех, черновик очищен) | Expanded + Err (ошибка, черновик сохранён)
//	Expanded -> Collapsed (отмена, черновик выброшен)
type Composer struct {
	mu    sync.Mutex
	state ComposerState
	mode  ComposerMode
	draft string
	err   error
}

func NewComposer() *Composer {
	return &Composer{}
}

func (c *Composer) OpenReply() error {
	return c.open(ComposeReply, "")
}

// OpenEdit открывает форму с текущим текстом комментария
func (c *Composer) OpenEdit(original string) error {
	return c.open(ComposeEdit, original)
}

func (c *Composer) open(mode ComposerMode, draft string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != ComposerCollapsed {
		return ErrComposerState
	}
	c.state = ComposerExpanded
	c.mode = mode
	c.draft = draft
	c.err = nil
	return nil
}

func (c *Composer) SetDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != ComposerExpanded {
		return ErrComposerState
	}
	c.draft = text
	return nil
}

// Cancel закрывает форму и выбрасывает черновик. Во время отправки не действует.
func (c *Composer) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ComposerSubmitting {
		return ErrComposerState
	}
	c.reset()
	return nil
}

// Submit отправляет черновик через send. Пустой черновик до send не доходит.
func (c *Composer) Submit(ctx context.Context, send func(ctx context.Context, draft string) error) error {
	c.mu.Lock()
	switch c.state {
	case ComposerSubmitting:
		c.mu.Unlock()
		return model.Classify("compose", model.ErrInFlight)
	case ComposerCollapsed:
		c.mu.Unlock()
		return ErrComposerState
	}
	draft := c.draft
	if strings.TrimSpace(draft) == "" {
		c.err = model.Classify("compose", model.Validationf("content is empty"))
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.state = ComposerSubmitting
	c.err = nil
	c.mu.Unlock()

	err := send(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = ComposerExpanded
		c.err = err
		return err
	}
	c.reset()
	return nil
}

func (c *Composer) reset() {
	c.state = ComposerCollapsed
	c.mode = ComposeReply
	c.draft = ""
	c.err = nil
}

func (c *Composer) State() ComposerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Composer) Mode() ComposerMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Err - ошибка последней отправки (состояние Expanded + Error)
func (c *Composer) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
