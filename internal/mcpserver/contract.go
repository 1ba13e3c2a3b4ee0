package mcpserver

// ArtifactFormat describes the correlations.json artifact for LLM consumers
// that read the file directly or reason about query results.
const ArtifactFormat = `# FlowState Correlation Artifact

The FlowState pipeline writes one JSON document, ` + "`" + `correlations.json` + "`" + `,
from the music/video consumption and commit event tables. Every query tool reads
this document; nothing is computed from live data.

## Structure

` + "```" + `json
{
  "timeline": [
    {"date": "2024-01-03", "music_count": 1, "video_count": 1, "commit_count": 10}
  ],
  "totals": {"total_music": 1, "total_videos": 1, "total_commits": 10},
  "correlations": {
    "music_only": {"avg_commits": 0, "days": 0},
    "video_only": {"avg_commits": 0, "days": 0},
    "both":       {"avg_commits": 10, "days": 1},
    "neither":    {"avg_commits": 0, "days": 0}
  },
  "insights": {
    "music_impact": "+0.0%",
    "video_impact": "+0.0%",
    "synergy_boost": "+0.0%",
    "best_pattern": "both"
  }
}
` + "```" + `

## Rules

1. **Timeline** is sorted by ` + "`" + `date` + "`" + ` (YYYY-MM-DD), one entry per day that
   appears in either source. A day missing from one source has zero counts there.
2. **Patterns** classify each day by whether music and video were consumed:
   ` + "`" + `music_only` + "`" + `, ` + "`" + `video_only` + "`" + `, ` + "`" + `both` + "`" + `, ` + "`" + `neither` + "`" + `.
   All four keys are always present and their ` + "`" + `days` + "`" + ` sum to the timeline length.
3. **avg_commits** is the mean commit count of the pattern's days, rounded to one
   decimal place. An empty pattern is ` + "`" + `{"avg_commits": 0, "days": 0}` + "`" + `.
4. **music_impact / video_impact** compare days with the signal against days
   without it, regardless of the other signal.
5. **synergy_boost** compares ` + "`" + `both` + "`" + ` against ` + "`" + `neither` + "`" + `.
6. **Percentages** are signed with one decimal (` + "`" + `+400.0%` + "`" + `, ` + "`" + `-12.5%` + "`" + `).
   A zero baseline yields ` + "`" + `+0.0%` + "`" + `.
7. **best_pattern** is the pattern with the highest ` + "`" + `avg_commits` + "`" + `; ties go to
   ` + "`" + `both` + "`" + `, then ` + "`" + `music_only` + "`" + `, then ` + "`" + `video_only` + "`" + `, then ` + "`" + `neither` + "`" + `.

## Freshness

The query tools serve the copy loaded at first use. After the pipeline rewrites
the file, call ` + "`" + `reload_artifact` + "`" + ` to pick up the new data.
`
