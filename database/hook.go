/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func colorWrap(s, code string) string { return code + s + ansiReset }

// QueryLogHook prints every executed query, coloured by operation. Errors are
// always printed; successful queries only when Verbose is set.
type QueryLogHook struct {
	Verbose bool
	Writer  io.Writer
	NoColor bool
}

var _ bun.QueryHook = (*QueryLogHook)(nil)

// NewQueryLogHook returns a hook writing to w, stdout when w is nil.
func NewQueryLogHook(w io.Writer, verbose bool) *QueryLogHook {
	if w == nil {
		w = os.Stdout
	}
	return &QueryLogHook{Verbose: verbose, Writer: w}
}

func (h *QueryLogHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if !h.Verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	dur := now.Sub(event.StartTime)

	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		h.wrap(fmt.Sprintf("%8s", "[SQL]"), ansiCyan),
		fmt.Sprintf("%12s", dur.Round(time.Microsecond)),
		"  ", h.wrap(event.Query, operationColor(event.Operation())),
	}

	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		msg := fmt.Sprintf(" %s: %s ", typ, event.Err.Error())
		if !h.NoColor {
			msg = color.New(color.BgRed).Sprint(msg)
		}
		args = append(args, "\t", msg)
	}
	w := h.Writer
	if w == nil {
		w = os.Stdout
	}
	_, _ = fmt.Fprintln(w, args...)
}

func (h *QueryLogHook) wrap(s, code string) string {
	if h.NoColor {
		return s
	}
	return colorWrap(s, code)
}

func operationColor(operation string) string {
	switch operation {
	case "SELECT":
		return ansiGreen
	case "INSERT":
		return ansiBlue
	case "UPDATE":
		return ansiYellow
	case "DELETE":
		return ansiMagenta
	default:
		return ansiRed
	}
}

// slowQueryHook reports successful queries slower than threshold through the
// structured logger.
type slowQueryHook struct {
	threshold time.Duration
	logger    Logger
}

var _ bun.QueryHook = (*slowQueryHook)(nil)

func (h *slowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if event.Err != nil {
		return
	}
	duration := time.Since(event.StartTime)
	if duration <= h.threshold {
		return
	}
	h.logger.Warn("slow query",
		"operation", event.Operation(),
		"duration", duration.Round(time.Microsecond).String(),
		"threshold", h.threshold.String(),
		"query", event.Query,
	)
}
