package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dkazakevich/studykeeper/internal/client/models"
)

func (a *App) AddNote(ctx context.Context) error {

	title, err := GetSimpleText(a.reader, "Enter note title:", os.Stdout)
	if err != nil {
		return err
	}

	body, err := GetMultiline(a.reader, "Enter note body:", os.Stdout)
	if err != nil {
		return err
	}

	payload, err := models.Wrap(models.Note{Title: title, Body: body})
	if err != nil {
		return err
	}

	r, err := a.study.Create(ctx, models.EntityTypeNote, payload)
	if err != nil {
		return err
	}

	printlnFn("Created note", r.LocalID)
	return nil
}

func (a *App) ListNotes(ctx context.Context) error {

	rows, err := a.study.List(ctx, models.EntityTypeNote)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		printlnFn("No notes yet")
		return nil
	}

	for _, r := range rows {
		var note models.Note
		if err := r.Decode(&note); err != nil {
			return err
		}
		mark := " "
		if r.Synced() {
			mark = "*"
		}
		printlnFn(fmt.Sprintf("%s %s  %s", mark, r.LocalID, note.Title))
	}
	return nil
}

func (a *App) DeleteNote(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: delnote <id>")
		return nil
	}

	if err := a.study.Delete(ctx, models.EntityTypeNote, args[0]); err != nil {
		return err
	}

	printlnFn("Deleted note", args[0])
	return nil
}
