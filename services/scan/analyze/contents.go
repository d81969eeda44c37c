// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyze

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/codescan/services/scan/standardize"
	"github.com/AleutianAI/codescan/services/scan/workspace"
)

// maxAttachedFileBytes caps a single attached file. Larger files are skipped
// with a warning; results stay bounded even for pathological repositories.
const maxAttachedFileBytes = 1 << 20

// contentReadConcurrency bounds parallel file reads during attachment.
const contentReadConcurrency = 8

// attachContents reads the text of every file referenced by at least one
// issue.
//
// Description:
//
//	Attachment runs before workspace cleanup; the returned map owns its
//	data outright. Reads run concurrently. A file that cannot be read,
//	escapes the workspace, or exceeds the size cap is logged and omitted;
//	attachment never fails the run.
func attachContents(ctx context.Context, ws *workspace.Workspace, issues []standardize.Issue, logger *slog.Logger) map[string]string {
	files := make([]string, 0, len(issues))
	seen := make(map[string]struct{}, len(issues))
	for _, issue := range issues {
		if _, ok := seen[issue.File]; ok {
			continue
		}
		seen[issue.File] = struct{}{}
		files = append(files, issue.File)
	}

	var mu sync.Mutex
	contents := make(map[string]string, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(contentReadConcurrency)
	for _, file := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			data, err := readBounded(ws, file, logger)
			if err != nil {
				logger.Warn("skipping unreadable issue file",
					slog.String("file", file),
					slog.Any("error", err),
				)
				return nil
			}
			if data == nil {
				return nil
			}
			mu.Lock()
			contents[file] = string(data)
			mu.Unlock()
			return nil
		})
	}
	// Workers only log, never fail.
	_ = g.Wait()
	return contents
}

// readBounded reads a workspace file, returning (nil, nil) when the file
// exceeds the attachment cap.
func readBounded(ws *workspace.Workspace, relPath string, logger *slog.Logger) ([]byte, error) {
	path, err := ws.Join(relPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxAttachedFileBytes {
		logger.Warn("skipping oversized issue file",
			slog.String("file", relPath),
			slog.Int64("size", info.Size()),
		)
		return nil, nil
	}
	return ws.ReadFile(relPath)
}
