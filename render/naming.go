package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clipforge/viralclip/job"
)

// OutputFileName builds the output MP4 name per §6:
// {job_id?_}clip_{index}_score_{score_with_dot_replaced_by_underscore}_{layout}_{template_lower}.mp4
func OutputFileName(jobID string, index int, score float64, layout job.Layout, templateName string) string {
	scoreStr := strings.ReplaceAll(strconv.FormatFloat(score, 'f', 2, 64), ".", "_")
	template := strings.ToLower(templateName)

	var prefix string
	if jobID != "" {
		prefix = jobID + "_"
	}
	return fmt.Sprintf("%sclip_%d_score_%s_%s_%s.mp4", prefix, index, scoreStr, layout, template)
}
