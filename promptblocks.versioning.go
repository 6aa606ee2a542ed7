package promptblocks

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CompositionVersionInfo provides detailed information about one stored
// version of a composition.
type CompositionVersionInfo struct {
	Version    int
	CreatedAt  time.Time
	CreatedBy  string
	Content    string
	ContentLen int
	Variables  map[string]string
	Tags       []string
	IsCurrent  bool
}

// CompositionHistory contains the complete version history for a composition.
type CompositionHistory struct {
	CompositionID  int64
	Name           string
	CurrentVersion int
	TotalVersions  int
	Versions       []CompositionVersionInfo
	OldestVersion  *CompositionVersionInfo
	NewestVersion  *CompositionVersionInfo
}

// CompositionDiff represents differences between two composition versions.
type CompositionDiff struct {
	OldVersion   int
	NewVersion   int
	OldContent   string
	NewContent   string
	AddedLines   []string
	RemovedLines []string
	ChangedLines int
	SameLines    int
	AddedTags    []string
	RemovedTags  []string
}

// GetCompositionHistory retrieves the complete version history for a
// composition, newest version first.
func GetCompositionHistory(ctx context.Context, store CompositionStore, id int64) (*CompositionHistory, error) {
	versions, err := store.ListCompositionVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewCompositionNotFoundError(id)
	}

	current, err := store.GetComposition(ctx, id)
	if err != nil {
		return nil, err
	}

	history := &CompositionHistory{
		CompositionID:  id,
		Name:           current.Name,
		CurrentVersion: current.Version,
		TotalVersions:  len(versions),
		Versions:       make([]CompositionVersionInfo, 0, len(versions)),
	}

	for _, v := range versions {
		comp, err := store.GetCompositionVersion(ctx, id, v)
		if err != nil {
			continue // Skip versions we can't load
		}

		history.Versions = append(history.Versions, CompositionVersionInfo{
			Version:    comp.Version,
			CreatedAt:  comp.CreatedAt,
			CreatedBy:  comp.CreatedBy,
			Content:    comp.Content,
			ContentLen: len(comp.Content),
			Variables:  comp.Variables,
			Tags:       comp.Tags,
			IsCurrent:  comp.Version == current.Version,
		})
	}

	if len(history.Versions) > 0 {
		history.NewestVersion = &history.Versions[0]
		history.OldestVersion = &history.Versions[len(history.Versions)-1]
	}

	return history, nil
}

// CompareCompositionVersions compares two stored versions of a composition.
func CompareCompositionVersions(ctx context.Context, store CompositionStore, id int64, oldVersion, newVersion int) (*CompositionDiff, error) {
	oldComp, err := store.GetCompositionVersion(ctx, id, oldVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to get version %d: %w", oldVersion, err)
	}

	newComp, err := store.GetCompositionVersion(ctx, id, newVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to get version %d: %w", newVersion, err)
	}

	return diffCompositions(oldComp, newComp), nil
}

// RollbackComposition creates a new version from an older version's content.
// Newer versions are kept; the rollback simply becomes the latest.
func RollbackComposition(ctx context.Context, store CompositionStore, id int64, targetVersion int) (*Composition, error) {
	target, err := store.GetCompositionVersion(ctx, id, targetVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to get version %d: %w", targetVersion, err)
	}

	rollback := &Composition{
		ID:        id,
		Name:      target.Name,
		Content:   target.Content,
		Variables: copyStringMap(target.Variables),
		Tags:      copyStringSlice(target.Tags),
		CreatedBy: target.CreatedBy,
	}

	if err := store.SaveComposition(ctx, rollback); err != nil {
		return nil, fmt.Errorf("failed to save rollback: %w", err)
	}

	return rollback, nil
}

// PruneCompositionVersions removes old versions, keeping the most recent N.
// Returns the number of versions deleted.
func PruneCompositionVersions(ctx context.Context, store CompositionStore, id int64, keepVersions int) (int, error) {
	if keepVersions < 1 {
		return 0, fmt.Errorf("must keep at least 1 version")
	}

	versions, err := store.ListCompositionVersions(ctx, id)
	if err != nil {
		return 0, err
	}

	// Versions are sorted newest first, keep the first N
	if len(versions) <= keepVersions {
		return 0, nil // Nothing to prune
	}

	deleted := 0
	for _, v := range versions[keepVersions:] {
		if err := store.DeleteCompositionVersion(ctx, id, v); err == nil {
			deleted++
		}
	}

	return deleted, nil
}

// diffCompositions creates a diff between two composition versions.
func diffCompositions(oldComp, newComp *Composition) *CompositionDiff {
	diff := &CompositionDiff{
		OldVersion: oldComp.Version,
		NewVersion: newComp.Version,
		OldContent: oldComp.Content,
		NewContent: newComp.Content,
	}

	// Simple line-by-line diff
	oldLines := strings.Split(oldComp.Content, "\n")
	newLines := strings.Split(newComp.Content, "\n")

	oldSet := make(map[string]bool)
	newSet := make(map[string]bool)
	for _, line := range oldLines {
		oldSet[line] = true
	}
	for _, line := range newLines {
		newSet[line] = true
	}

	for _, line := range newLines {
		if !oldSet[line] {
			diff.AddedLines = append(diff.AddedLines, line)
		} else {
			diff.SameLines++
		}
	}
	for _, line := range oldLines {
		if !newSet[line] {
			diff.RemovedLines = append(diff.RemovedLines, line)
		}
	}
	diff.ChangedLines = len(diff.AddedLines) + len(diff.RemovedLines)

	oldTagSet := make(map[string]bool)
	newTagSet := make(map[string]bool)
	for _, tag := range oldComp.Tags {
		oldTagSet[tag] = true
	}
	for _, tag := range newComp.Tags {
		newTagSet[tag] = true
	}
	for _, tag := range newComp.Tags {
		if !oldTagSet[tag] {
			diff.AddedTags = append(diff.AddedTags, tag)
		}
	}
	for _, tag := range oldComp.Tags {
		if !newTagSet[tag] {
			diff.RemovedTags = append(diff.RemovedTags, tag)
		}
	}

	return diff
}

// HasChanges returns true if there are any changes between versions.
func (d *CompositionDiff) HasChanges() bool {
	return len(d.AddedLines) > 0 || len(d.RemovedLines) > 0 ||
		len(d.AddedTags) > 0 || len(d.RemovedTags) > 0
}

// String returns a human-readable summary of the diff.
func (d *CompositionDiff) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Version %d -> %d\n", d.OldVersion, d.NewVersion))
	sb.WriteString(fmt.Sprintf("Lines: +%d -%d (=%d unchanged)\n",
		len(d.AddedLines), len(d.RemovedLines), d.SameLines))

	if len(d.AddedTags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags added: %s\n", strings.Join(d.AddedTags, ", ")))
	}
	if len(d.RemovedTags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags removed: %s\n", strings.Join(d.RemovedTags, ", ")))
	}

	if len(d.AddedLines) > 0 && len(d.AddedLines) <= 10 {
		sb.WriteString("\nAdded:\n")
		for _, line := range d.AddedLines {
			if line != "" {
				sb.WriteString(fmt.Sprintf("  + %s\n", line))
			}
		}
	}

	if len(d.RemovedLines) > 0 && len(d.RemovedLines) <= 10 {
		sb.WriteString("\nRemoved:\n")
		for _, line := range d.RemovedLines {
			if line != "" {
				sb.WriteString(fmt.Sprintf("  - %s\n", line))
			}
		}
	}

	return sb.String()
}

// String returns a human-readable summary of the version history.
func (h *CompositionHistory) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("=== Version History: %s (#%d) ===\n", h.Name, h.CompositionID))
	sb.WriteString(fmt.Sprintf("Current: v%d | Total: %d versions\n\n", h.CurrentVersion, h.TotalVersions))

	for _, v := range h.Versions {
		current := ""
		if v.IsCurrent {
			current = " [CURRENT]"
		}
		sb.WriteString(fmt.Sprintf("v%d%s\n", v.Version, current))
		sb.WriteString(fmt.Sprintf("  Created: %s\n", v.CreatedAt.Format(time.RFC3339)))
		if v.CreatedBy != "" {
			sb.WriteString(fmt.Sprintf("  By: %s\n", v.CreatedBy))
		}
		sb.WriteString(fmt.Sprintf("  Size: %d chars\n", v.ContentLen))
		if len(v.Tags) > 0 {
			sb.WriteString(fmt.Sprintf("  Tags: %s\n", strings.Join(v.Tags, ", ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
