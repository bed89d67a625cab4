package cli

import (
	"context"
	"os"

	"github.com/dkazakevich/studykeeper/internal/client/models"
)

func (a *App) AddDeck(ctx context.Context) error {

	title, err := GetSimpleText(a.reader, "Enter deck title:", os.Stdout)
	if err != nil {
		return err
	}

	payload, err := models.Wrap(models.Deck{Title: title})
	if err != nil {
		return err
	}

	r, err := a.study.Create(ctx, models.EntityTypeDeck, payload)
	if err != nil {
		return err
	}

	printlnFn("Created deck", r.LocalID)
	return nil
}

func (a *App) AddCard(ctx context.Context) error {

	deckID, err := GetSimpleText(a.reader, "Enter deck id:", os.Stdout)
	if err != nil {
		return err
	}

	front, err := GetSimpleText(a.reader, "Enter card front:", os.Stdout)
	if err != nil {
		return err
	}

	back, err := GetMultiline(a.reader, "Enter card back:", os.Stdout)
	if err != nil {
		return err
	}

	payload, err := models.Wrap(models.Flashcard{
		DeckID: deckID,
		Front:  front,
		Back:   back,
		Memory: models.NewMemoryState(),
	})
	if err != nil {
		return err
	}

	r, err := a.study.Create(ctx, models.EntityTypeFlashcard, payload)
	if err != nil {
		return err
	}

	printlnFn("Created card", r.LocalID)
	return nil
}
