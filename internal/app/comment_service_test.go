package app

import (
	"context"
	"errors"
	"testing"
)

func TestCreateCommentValidatesInput(t *testing.T) {
	svc := &CommentService{}

	tests := []struct {
		name  string
		input CreateCommentInput
	}{
		{name: "missing user", input: CreateCommentInput{MessageID: 1, Body: "why?"}},
		{name: "missing message", input: CreateCommentInput{UserID: 1, Body: "why?"}},
		{name: "blank body", input: CreateCommentInput{UserID: 1, MessageID: 1, Body: "   "}},
		{name: "negative start offset", input: CreateCommentInput{UserID: 1, MessageID: 1, Body: "why?", StartOffset: -1}},
		{name: "end before start", input: CreateCommentInput{UserID: 1, MessageID: 1, Body: "why?", StartOffset: 10, EndOffset: 4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.input); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCommentOperationsValidateIDs(t *testing.T) {
	svc := &CommentService{}

	if _, err := svc.List(0, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("List without user: err = %v", err)
	}
	if err := svc.Delete(1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Delete without comment id: err = %v", err)
	}
	if _, err := svc.GenerateReply(context.Background(), 0, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("GenerateReply without ids: err = %v", err)
	}
}
