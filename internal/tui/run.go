package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/abuse-forge/internal/common"
	"github.com/Veraticus/abuse-forge/internal/model"
)

// RunBrowser opens the browser over records and blocks until the user quits or ctx ends.
func RunBrowser(ctx context.Context, source string, records []model.TransactionRecord, opts ...tea.ProgramOption) error {
	if len(records) == 0 {
		return common.ErrEmptyDataset
	}

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(NewModel(source, records), opts...)

	if _, err := program.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, tea.ErrProgramKilled) {
			return ctxErr
		}
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
