package corpus

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/lexicheck/internal/domain"
)

// timestampLayout qualifies archive and duplicate-log entries, e.g.
// 2025_03_14-02_05_09_PM.
const timestampLayout = "2006_01_02-03_04_05_PM"

// ReconcileResult describes what reconciliation did.
type ReconcileResult struct {
	// Records is the canonical record set: sorted by the diacritic-free key,
	// exact duplicates removed.
	Records []domain.LanguageRecord
	// Removed is the number of duplicate rows dropped.
	Removed int
	// Rewritten is true when the backing corpus file was replaced.
	Rewritten bool
	// UpdateReason explains a rewrite: "remove duplicates", "sort", or
	// "remove duplicates and sort".
	UpdateReason string
	// ArchivePath is where the prior corpus revision was saved.
	ArchivePath string
	// DuplicatesLogPath is the sibling log the dropped duplicates were
	// appended to.
	DuplicatesLogPath string
}

// Reconcile produces the canonical record set for the corpus at corpusPath
// and, only when the set changed, rewrites the file: preamble verbatim, then
// one 'source: target' line per record in sorted order. The prior revision is
// archived under a timestamped name and dropped duplicates are appended to a
// sibling log; nothing is ever deleted. Any I/O failure aborts before the
// atomic swap, leaving the live corpus untouched.
//
// Not safe to run concurrently against the same corpus path from two
// processes; callers are expected to run one batch at a time.
func Reconcile(records []domain.LanguageRecord, preamble []string, corpusPath string, runID uuid.UUID) (*ReconcileResult, error) {
	sorted := append([]domain.LanguageRecord(nil), records...)
	slices.SortStableFunc(sorted, func(a, b domain.LanguageRecord) int {
		return strings.Compare(a.SourcePhraseNoDiacritic, b.SourcePhraseNoDiacritic)
	})

	wasSorted := true
	for i := range records {
		if records[i].SourcePhraseNoDiacritic != sorted[i].SourcePhraseNoDiacritic {
			wasSorted = false
			break
		}
	}

	// Exact full-record duplicates: every field identical. Two records with
	// identical phrases but diverging derived fields are not duplicates
	// (derivation is pure, so this should not occur).
	deduped := make([]domain.LanguageRecord, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	dupCounts := make(map[[2]string]int)
	for _, rec := range sorted {
		key := recordKey(rec)
		if seen[key] {
			dupCounts[[2]string{rec.SourcePhrase, rec.TargetPhrase}]++
			continue
		}
		seen[key] = true
		deduped = append(deduped, rec)
	}

	res := &ReconcileResult{
		Records: deduped,
		Removed: len(sorted) - len(deduped),
	}

	if res.Removed == 0 && wasSorted {
		return res, nil
	}

	now := time.Now()
	ext := filepath.Ext(corpusPath)
	base := strings.TrimSuffix(corpusPath, ext)

	if res.Removed > 0 {
		logPath := base + "_duplicates" + ext
		if err := appendDuplicatesLog(logPath, corpusPath, dupCounts, now, runID); err != nil {
			return nil, err
		}
		res.DuplicatesLogPath = logPath
	}

	switch {
	case res.Removed > 0 && wasSorted:
		res.UpdateReason = "remove duplicates"
	case res.Removed == 0 && !wasSorted:
		res.UpdateReason = "sort"
	default:
		res.UpdateReason = "remove duplicates and sort"
	}

	archivePath, err := rewriteCorpus(corpusPath, base, ext, preamble, deduped, now)
	if err != nil {
		return nil, err
	}
	res.Rewritten = true
	res.ArchivePath = archivePath

	return res, nil
}

// recordKey folds every field of the record into a comparison key.
func recordKey(r domain.LanguageRecord) string {
	gender := ""
	if r.SourceNounGender != nil {
		gender = r.SourceNounGender.String()
	}
	return strings.Join([]string{
		r.SourcePhrase, r.TargetPhrase, r.SourceLanguage, r.TargetLanguage,
		fmt.Sprintf("%t", r.IsSourceNoun), r.SourceNoun, gender,
		r.TargetPhraseShort, fmt.Sprintf("%t", r.IsIgnoreTranslationError),
		r.SourcePhraseNoDiacritic,
	}, "\x1f")
}

// appendDuplicatesLog appends the dropped (source, target) pairs with their
// repeat counts under a timestamp banner. Prior log content is never touched.
func appendDuplicatesLog(logPath, corpusPath string, dupCounts map[[2]string]int, now time.Time, runID uuid.UUID) error {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open duplicates log %s: %w", logPath, err)
	}
	defer f.Close()

	banner := fmt.Sprintf("# Duplicates from '%s' written at %s (run %s):\n",
		corpusPath, now.Format(timestampLayout), runID)
	if _, err := f.WriteString(banner); err != nil {
		return fmt.Errorf("write duplicates log %s: %w", logPath, err)
	}

	pairs := make([][2]string, 0, len(dupCounts))
	for p := range dupCounts {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	w := csv.NewWriter(f)
	for _, p := range pairs {
		if err := w.Write([]string{p[0], p[1], fmt.Sprintf("%d", dupCounts[p])}); err != nil {
			return fmt.Errorf("write duplicates log %s: %w", logPath, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write duplicates log %s: %w", logPath, err)
	}
	return nil
}

// rewriteCorpus writes the canonical corpus to a temp file, archives the
// current file under a timestamped name, then atomically swaps the temp file
// in. Returns the archive path.
func rewriteCorpus(corpusPath, base, ext string, preamble []string, records []domain.LanguageRecord, now time.Time) (string, error) {
	tmpPath := base + "_tmp" + ext
	if err := writeCorpusFile(tmpPath, preamble, records); err != nil {
		return "", err
	}

	archivePath := uniquePath(base + "_saved_" + now.Format(timestampLayout) + ext)
	if err := os.Rename(corpusPath, archivePath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("archive corpus %s: %w", corpusPath, err)
	}
	// Touch the archive so its mtime records when it was set aside.
	_ = os.Chtimes(archivePath, now, now)

	if err := os.Rename(tmpPath, corpusPath); err != nil {
		// Put the original back so the live corpus is not lost.
		if restoreErr := os.Rename(archivePath, corpusPath); restoreErr != nil {
			return "", fmt.Errorf("replace corpus %s (original at %s): %w", corpusPath, archivePath, err)
		}
		os.Remove(tmpPath)
		return "", fmt.Errorf("replace corpus %s: %w", corpusPath, err)
	}

	return archivePath, nil
}

func writeCorpusFile(path string, preamble []string, records []domain.LanguageRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create temp corpus %s: %w", path, err)
	}

	write := func() error {
		for _, line := range preamble {
			if _, err := fmt.Fprintf(f, "%s\n", line); err != nil {
				return err
			}
		}
		for _, rec := range records {
			if _, err := fmt.Fprintf(f, "%s%s%s\n", rec.SourcePhrase, separator, rec.TargetPhrase); err != nil {
				return err
			}
		}
		return f.Sync()
	}

	if err := write(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write temp corpus %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("close temp corpus %s: %w", path, err)
	}
	return nil
}

// uniquePath appends a numeric suffix until the path does not exist, so an
// archive or log never overwrites an earlier one.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
