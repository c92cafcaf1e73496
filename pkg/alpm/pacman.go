package alpm

import (
	"os/exec"
	"strings"
)

// PacmanDB answers database queries by shelling out to pacman. It avoids a
// cgo dependency on libalpm at the cost of one process spawn per query,
// which the handle pool amortizes by bounding concurrency.
type PacmanDB struct {
	// run executes pacman with the given arguments and returns stdout.
	// Replaceable in tests.
	run func(args ...string) (string, error)
}

// NewPacmanDB returns a DB backed by the system pacman binary.
func NewPacmanDB() *PacmanDB {
	return &PacmanDB{run: runPacman}
}

func runPacman(args ...string) (string, error) {
	out, err := exec.Command("pacman", args...).Output()
	return string(out), err
}

// LocalSatisfies checks the local database via `pacman -T`, which exits
// non-zero when the dependency string is unmet. Provides relationships are
// honored by pacman itself.
func (p *PacmanDB) LocalSatisfies(name string) bool {
	_, err := p.run("-T", name)
	return err == nil
}

// SyncSatisfier resolves name against the sync databases. An exact package
// is looked up directly; otherwise pacman resolves a provider, whose
// canonical record is then fetched.
func (p *PacmanDB) SyncSatisfier(name string) (OfficialRecord, bool) {
	if rec, ok := p.info(name); ok {
		return rec, true
	}

	// Not a real package name; ask pacman to pick a provider the way an
	// install would.
	out, err := p.run("--noconfirm", "-Sp", "--print-format", "%n", name)
	if err != nil {
		return OfficialRecord{}, false
	}
	// -Sp prints the whole would-be transaction; the target's provider
	// is the last line.
	lines := strings.Fields(strings.TrimSpace(out))
	if len(lines) == 0 {
		return OfficialRecord{}, false
	}
	return p.info(lines[len(lines)-1])
}

func (p *PacmanDB) info(name string) (OfficialRecord, bool) {
	out, err := p.run("-Si", name)
	if err != nil {
		return OfficialRecord{}, false
	}
	fields := parseSiOutput(out)
	canonical, ok := fields["Name"]
	if !ok || len(canonical) == 0 {
		return OfficialRecord{}, false
	}
	rec := OfficialRecord{Name: canonical[0]}
	for _, dep := range fields["Depends On"] {
		if dep == "None" {
			continue
		}
		rec.Depends = append(rec.Depends, dep)
	}
	return rec, true
}

// parseSiOutput parses `pacman -Si` key/value output. Values are
// whitespace-separated lists; long lists wrap onto continuation lines that
// carry no key of their own.
func parseSiOutput(out string) map[string][]string {
	fields := make(map[string][]string)
	var last string
	for _, line := range strings.Split(out, "\n") {
		key, value, found := strings.Cut(line, ":")
		trimmed := strings.TrimSpace(key)
		if !found || trimmed == "" {
			// Continuation of the previous field.
			fields[last] = append(fields[last], strings.Fields(line)...)
			continue
		}
		last = trimmed
		fields[last] = append(fields[last], strings.Fields(value)...)
	}
	return fields
}

// Close is a no-op; each query spawns its own process.
func (p *PacmanDB) Close() error { return nil }
