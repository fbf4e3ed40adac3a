// internal/router/router.go
package router

import (
	"errors"

	"github.com/user/magnus/internal/intent"
	"github.com/user/magnus/internal/types"
)

// PipelineID names a handler pipeline. Routing produces exactly one.
type PipelineID string

const (
	PipelineMultiAgent  PipelineID = "multi_agent"
	PipelinePlayByID    PipelineID = "play_by_id"
	PipelineVideoSearch PipelineID = "video_search"
	PipelineTranslation PipelineID = "translation"
	PipelineWebSearch   PipelineID = "web_search"
	PipelineMusic       PipelineID = "music_concept"
	PipelineLocation    PipelineID = "location"
	PipelineStudyGuide  PipelineID = "study_guide"
	PipelineGeneric     PipelineID = "generic"
)

// ErrNotConfigured is returned by callers when no generation backend is
// available. Routing itself never fails; the check happens before dispatch.
var ErrNotConfigured = errors.New("generation backend not configured")

// Route picks the pipeline for a prompt. A pinned tool selection overrides
// the heuristics it corresponds to; heuristic matches are otherwise resolved
// in a fixed precedence order, so the same prompt always routes the same way.
func Route(text string, pinned types.Tool, c intent.Classification) PipelineID {
	if pinned == types.ToolTeamOfExperts {
		return PipelineMultiAgent
	}

	pinnedNone := pinned == types.ToolNone
	if pinnedNone && c.VideoID != "" {
		return PipelinePlayByID
	}
	if pinnedNone && (c.MediaPlayback || c.VideoSearch) {
		return PipelineVideoSearch
	}
	if pinnedNone && c.Translation != nil {
		return PipelineTranslation
	}

	if pinned == types.ToolWebSearch {
		return PipelineWebSearch
	}
	if pinned == types.ToolMusic || c.MusicGeneration {
		return PipelineMusic
	}
	if pinned == types.ToolMap {
		return PipelineLocation
	}
	if pinned == types.ToolStudy {
		return PipelineStudyGuide
	}
	return PipelineGeneric
}
