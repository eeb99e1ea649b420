package cmd

import (
	"bufio"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/masmgr/testledger/config"
	"github.com/masmgr/testledger/internal/classify"
	"github.com/masmgr/testledger/internal/orchestrator"
	"github.com/masmgr/testledger/internal/workcopy"
)

// LoadTasks reads one repository URL per line. Blank lines and lines
// starting with # are skipped. A URL or repository name seen before is
// logged and skipped so no two tasks share a working copy.
func LoadTasks(path string, lang classify.Language, logger *zap.Logger) ([]orchestrator.Task, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "open repository list"), config.ErrInvalid)
	}
	defer file.Close()

	var (
		tasks []orchestrator.Task
		urls  = make(map[string]int)
		names = make(map[string]int)
	)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		url := strings.TrimSpace(scanner.Text())
		if url == "" || strings.HasPrefix(url, "#") {
			continue
		}

		if first, ok := urls[url]; ok {
			logger.Warn("duplicate repository skipped",
				zap.String("url", url), zap.Int("line", lineNo), zap.Int("first_line", first))
			continue
		}
		urls[url] = lineNo

		// Malformed URLs are left for the orchestrator to reject and log.
		if name, err := workcopy.RepoName(url); err == nil {
			if first, ok := names[name]; ok {
				logger.Warn("repository name already in use, skipped",
					zap.String("url", url), zap.String("repository", name),
					zap.Int("line", lineNo), zap.Int("first_line", first))
				continue
			}
			names[name] = lineNo
		}

		tasks = append(tasks, orchestrator.Task{URL: url, Language: lang})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read repository list"), config.ErrInvalid)
	}

	return tasks, nil
}
