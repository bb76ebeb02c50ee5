package sequencer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02_15-04-05"

// SaveInfo represents a saved state file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
	Format    Format
}

// ProjectStore keeps projects as folders of timestamped saves under Dir
type ProjectStore struct {
	Dir string
	Now func() time.Time
}

// DefaultProjectsDir returns the projects directory under the user config
func DefaultProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianoroll", "projects"), nil
}

func NewProjectStore(dir string) *ProjectStore {
	return &ProjectStore{Dir: dir, Now: time.Now}
}

// ProjectDir returns the path to a specific project
func (ps *ProjectStore) ProjectDir(projectName string) string {
	return filepath.Join(ps.Dir, projectName)
}

// ListProjects returns all project folder names
func (ps *ProjectStore) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(ps.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// parseSaveFilename splits 2024-01-15_14-30-00[_name].json|yaml
func parseSaveFilename(filename string) (SaveInfo, bool) {
	ext := filepath.Ext(filename)
	switch strings.ToLower(ext) {
	case ".json", ".yaml", ".yml":
	default:
		return SaveInfo{}, false
	}
	baseName := strings.TrimSuffix(filename, ext)
	if len(baseName) < len(timestampLayout) {
		return SaveInfo{}, false
	}

	ts, err := time.Parse(timestampLayout, baseName[:len(timestampLayout)])
	if err != nil {
		return SaveInfo{}, false
	}

	info := SaveInfo{
		Filename:  filename,
		Timestamp: ts,
		Format:    FormatFromPath(filename),
	}
	rest := baseName[len(timestampLayout):]
	if len(rest) > 1 && rest[0] == '_' {
		info.Name = rest[1:]
	}
	return info, true
}

// ListSaves returns timestamped saves for a project, newest first
func (ps *ProjectStore) ListSaves(projectName string) ([]SaveInfo, error) {
	entries, err := os.ReadDir(ps.ProjectDir(projectName))
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, ok := parseSaveFilename(entry.Name()); ok {
			saves = append(saves, info)
		}
	}

	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})

	return saves, nil
}

// Save writes state to the project with a timestamped filename and returns
// that filename.
func (ps *ProjectStore) Save(projectName string, s State, format Format) (string, error) {
	if projectName == "" {
		projectName = "untitled"
	}

	dir := ps.ProjectDir(projectName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create project %s: %w", projectName, err)
	}

	data, err := s.Marshal(format)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}

	filename := ps.Now().Format(timestampLayout) + format.Ext()
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", fmt.Errorf("write save: %w", err)
	}
	return filename, nil
}

// Load reads a specific save, or the most recent one if filename is empty
func (ps *ProjectStore) Load(projectName, filename string) (State, error) {
	if filename == "" {
		saves, err := ps.ListSaves(projectName)
		if err != nil || len(saves) == 0 {
			return State{}, fmt.Errorf("no saves found in project %s", projectName)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(ps.ProjectDir(projectName), filename))
	if err != nil {
		return State{}, err
	}

	s, err := UnmarshalState(data)
	if err != nil {
		return State{}, fmt.Errorf("load %s/%s: %w", projectName, filename, err)
	}
	return s, nil
}

// CreateProject creates a new empty project folder
func (ps *ProjectStore) CreateProject(name string) error {
	return os.MkdirAll(ps.ProjectDir(name), 0755)
}

func (ps *ProjectStore) DeleteSave(projectName, filename string) error {
	return os.Remove(filepath.Join(ps.ProjectDir(projectName), filename))
}

// RenameSave changes the name part of a save, keeping timestamp and format
func (ps *ProjectStore) RenameSave(projectName, oldFilename, newName string) (string, error) {
	info, ok := parseSaveFilename(oldFilename)
	if !ok {
		return "", fmt.Errorf("invalid save filename %q", oldFilename)
	}

	newFilename := info.Timestamp.Format(timestampLayout)
	if safeName := sanitizeFilename(newName); safeName != "" {
		newFilename += "_" + safeName
	}
	newFilename += filepath.Ext(oldFilename)

	dir := ps.ProjectDir(projectName)
	if err := os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename)); err != nil {
		return "", err
	}
	return newFilename, nil
}

var filenameReplacer = strings.NewReplacer(
	" ", "-", "/", "-", "\\", "-", ":", "-",
	"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
)

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	return filenameReplacer.Replace(name)
}

// DeleteProject deletes entire project folder
func (ps *ProjectStore) DeleteProject(name string) error {
	return os.RemoveAll(ps.ProjectDir(name))
}

func (ps *ProjectStore) RenameProject(oldName, newName string) error {
	return os.Rename(ps.ProjectDir(oldName), ps.ProjectDir(newName))
}
