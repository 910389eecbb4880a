// Package diff renders human-readable differences between two versions of
// a text field, used by the history service when comparing snapshots.
//
// Package diff 渲染两个历史版本文本之间的可读差异。
package diff

import "github.com/sergi/go-diff/diffmatchpatch"

// Pretty returns a terminal-friendly colored diff of old against new.
// Pretty 返回 old 与 new 之间适合终端查看的彩色差异。
func Pretty(old, new string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(old, new, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}

// Patch returns the change from old to new in unidiff-style patch text.
// Patch 以补丁文本形式返回 old 到 new 的变更。
func Patch(old, new string) string {
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(old, new)
	return dmp.PatchToText(patches)
}
