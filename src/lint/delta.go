package lint

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/hashicorp/go-hclog"
)

// Delta finds descriptors touched by the current change: uncommitted edits
// plus commits not yet on the target branch.
type Delta struct {
	RootDir      string
	TargetBranch string
	Logger       hclog.Logger
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// ciTargetBranchVars name the merge target in common CI systems, in lookup order.
var ciTargetBranchVars = []string{
	"CI_MERGE_REQUEST_TARGET_BRANCH_NAME", // GitLab
	"GITHUB_BASE_REF",                     // GitHub Actions
	"BITBUCKET_PR_DESTINATION_BRANCH",
	"CHANGE_TARGET", // Jenkins
}

func (d *Delta) logger() hclog.Logger {
	if d.Logger == nil {
		return hclog.NewNullLogger()
	}
	return d.Logger
}

func (d *Delta) getenv(name string) string {
	if d.Getenv != nil {
		return d.Getenv(name)
	}
	return os.Getenv(name)
}

// ChangedFiles returns changed paths, slash-separated and relative to RootDir.
// RootDir may sit below the repository root; changes outside it are dropped.
// A nil set means the delta is unknown and everything should be scanned.
func (d *Delta) ChangedFiles(ctx context.Context) (map[string]bool, error) {
	repo, err := git.PlainOpenWithOptions(d.RootDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		d.logger().Debug("not a git repo, scanning all descriptors", "root", d.RootDir)
		return nil, nil
	}
	prefix, err := d.scanPrefix(repo)
	if err != nil {
		return nil, err
	}

	changed := make(map[string]bool)
	add := func(p string) {
		p = filepath.ToSlash(p)
		if rel, ok := strings.CutPrefix(p, prefix); ok {
			changed[rel] = true
		}
	}

	if err := d.worktreeChanges(repo, add); err != nil {
		d.logger().Warn("worktree status failed, scanning all descriptors", "error", err)
		return nil, nil
	}
	if err := d.branchChanges(ctx, repo, add); err != nil {
		d.logger().Warn("branch diff failed, scanning all descriptors", "error", err)
		return nil, nil
	}
	d.logger().Debug("delta computed", "changed", len(changed), "prefix", prefix)
	return changed, nil
}

// scanPrefix returns RootDir relative to the worktree root with a trailing
// slash, or "" when they coincide.
func (d *Delta) scanPrefix(repo *git.Repository) (string, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs(d.RootDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(realPath(wt.Filesystem.Root()), realPath(root))
	if err != nil {
		return "", err
	}
	switch {
	case rel == ".":
		return "", nil
	case rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)):
		return "", fmt.Errorf("%s is outside worktree %s", root, wt.Filesystem.Root())
	}
	return filepath.ToSlash(rel) + "/", nil
}

func realPath(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return p
}

// worktreeChanges reports staged and unstaged modifications.
func (d *Delta) worktreeChanges(repo *git.Repository, add func(string)) error {
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	status, err := wt.Status()
	if err != nil {
		return err
	}
	for p, s := range status {
		if s.Worktree != git.Unmodified || s.Staging != git.Unmodified {
			add(p)
		}
	}
	return nil
}

// branchChanges reports files that differ between the target branch and HEAD.
// When HEAD is the target branch tip, the last commit is diffed instead.
func (d *Delta) branchChanges(ctx context.Context, repo *git.Repository, add func(string)) error {
	branch := d.targetBranch(repo)
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("getting HEAD: %w", err)
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("getting HEAD commit: %w", err)
	}

	base := resolveBranch(repo, branch)
	if base == nil {
		d.logger().Debug("target branch not found, diffing worktree only", "branch", branch)
		return nil
	}
	baseCommit, err := repo.CommitObject(base.Hash())
	if err != nil {
		return fmt.Errorf("getting %s commit: %w", branch, err)
	}
	if baseCommit.Hash == headCommit.Hash {
		if headCommit.NumParents() == 0 {
			return nil
		}
		if baseCommit, err = headCommit.Parent(0); err != nil {
			return nil
		}
	}

	from, err := baseCommit.Tree()
	if err != nil {
		return err
	}
	to, err := headCommit.Tree()
	if err != nil {
		return err
	}
	changes, err := object.DiffTreeWithOptions(ctx, from, to, &object.DiffTreeOptions{})
	if err != nil {
		return fmt.Errorf("diffing trees: %w", err)
	}
	for _, c := range changes {
		if name := changeName(c); name != "" {
			add(name)
		}
	}
	return nil
}

// resolveBranch looks the branch up locally, then on origin.
func resolveBranch(repo *git.Repository, branch string) *plumbing.Reference {
	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(branch),
		plumbing.NewRemoteReferenceName("origin", branch),
	} {
		if ref, err := repo.Reference(name, true); err == nil {
			return ref
		}
	}
	return nil
}

// targetBranch picks the diff base: DROIDCONF_TARGET_BRANCH, then config,
// then CI variables, then origin/HEAD, then main.
func (d *Delta) targetBranch(repo *git.Repository) string {
	if branch := d.getenv("DROIDCONF_TARGET_BRANCH"); branch != "" {
		return branch
	}
	if d.TargetBranch != "" {
		return d.TargetBranch
	}
	for _, v := range ciTargetBranchVars {
		if branch := d.getenv(v); branch != "" {
			return branch
		}
	}
	if branch := detectDefaultBranch(repo); branch != "" {
		return branch
	}
	return "main"
}

// detectDefaultBranch follows the symbolic origin/HEAD ref.
func detectDefaultBranch(repo *git.Repository) string {
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", "HEAD"), false)
	if err != nil {
		return ""
	}
	branch, _ := strings.CutPrefix(ref.Target().String(), "refs/remotes/origin/")
	if branch == ref.Target().String() {
		return ""
	}
	return branch
}

func changeName(change *object.Change) string {
	action, err := change.Action()
	if err != nil {
		return ""
	}
	switch action {
	case merkletrie.Insert, merkletrie.Modify:
		return change.To.Name
	case merkletrie.Delete:
		return change.From.Name
	}
	return ""
}

// FilterByDelta keeps descriptors whose resolved configuration may have
// changed: the descriptor itself, a proguard file beside it, or a properties
// file named in propertiesFiles in its directory or any parent. A nil
// changed set keeps every path.
func FilterByDelta(paths []string, changed map[string]bool, propertiesFiles []string) []string {
	if changed == nil {
		return paths
	}
	props := make(map[string]bool, len(propertiesFiles))
	for _, name := range propertiesFiles {
		props[name] = true
	}

	// Directories whose properties changed.
	propDirs := make(map[string]bool)
	// Directories with a changed proguard file.
	rulesDirs := make(map[string]bool)
	for p := range changed {
		dir, base := path.Split(p)
		dir = path.Clean(dir)
		switch {
		case props[base]:
			propDirs[dir] = true
		case strings.HasSuffix(base, ".pro"):
			rulesDirs[dir] = true
		}
	}

	filtered := make([]string, 0, len(paths))
	for _, p := range paths {
		norm := normalizeSlashPath(p)
		dir := path.Dir(norm)
		if changed[norm] || rulesDirs[dir] || underChangedProperties(dir, propDirs) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func underChangedProperties(dir string, propDirs map[string]bool) bool {
	for {
		if propDirs[dir] {
			return true
		}
		if dir == "." || dir == "/" {
			return false
		}
		dir = path.Dir(dir)
	}
}
