package ir

import (
	"context"
	"fmt"
	"log/slog"
)

// Shown is anything that can be rendered for a log line and identified by a
// structural hash, like a type term
type Shown interface {
	fmt.Stringer
	Hash() uint64
}

// slogNode wraps a Node as a slog.LogValuer to not render trees
// unless they definitely need to be logged
func slogNode(n Node) slog.LogValuer { return nodeLogValuer{n} }
func slogShown(s Shown) slog.LogValuer { return shownLogValuer{s} }

type nodeLogValuer struct{ Node }
type shownLogValuer struct{ Shown }

func (l nodeLogValuer) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("str", ExprString(l.Node)),
		slog.String("hash", fmt.Sprintf("%x", l.Hash())),
		slog.String("name", l.Describe()),
	)
}
func (l shownLogValuer) LogValue() slog.Value { return slog.StringValue(l.String()) }

// SlogHandler wraps underlying so that it is capable of lazy-printing trees and types
func SlogHandler(underlying slog.Handler) slog.Handler {
	return &nodeLogHandler{underlying: underlying}
}

type nodeLogHandler struct {
	underlying slog.Handler
}

func (l *nodeLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return l.underlying.Enabled(ctx, level)
}

func lazyValue(v slog.Value) slog.Value {
	if v.Kind() != slog.KindAny {
		return v
	}
	switch value := v.Any().(type) {
	case Node:
		return slog.AnyValue(slogNode(value))
	case Shown:
		return slog.AnyValue(slogShown(value))
	}
	return v
}

func (l *nodeLogHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.AddAttrs(slog.Attr{Key: attr.Key, Value: lazyValue(attr.Value)})
		return true
	})
	return l.underlying.Handle(ctx, newRecord)
}

func (l *nodeLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	wrapped := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		wrapped[i] = slog.Attr{Key: attr.Key, Value: lazyValue(attr.Value)}
	}
	return SlogHandler(l.underlying.WithAttrs(wrapped))
}

func (l *nodeLogHandler) WithGroup(name string) slog.Handler {
	return SlogHandler(l.underlying.WithGroup(name))
}
