package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biograph/biograph/internal/datasource"
)

func TestPlanCommandStructure(t *testing.T) {
	assert.Equal(t, "plan", planCmd.Use)
	assert.NotEmpty(t, planCmd.Short)
	assert.NotNil(t, planCmd.RunE)
}

// seedPlanData lays out minimal local instances for every datasource.
func seedPlanData(t *testing.T, root string) {
	t.Helper()
	files := map[string]map[string]string{
		datasource.NcbiGeneName: {
			datasource.NcbiGeneFile: "9606\t7157\tTP53\t-\t-\t-\t17\t-\ttumor protein p53\tprotein-coding\n",
		},
		datasource.ReactomeName: {
			datasource.ReactomePathwaysFile: "R-HSA-1\tSignal Transduction\tHomo sapiens\n",
			datasource.ReactomeMappingFile:  "7157\tR-HSA-1\turl\tSignal Transduction\tTAS\tHomo sapiens\n",
		},
		datasource.GtexName: {
			datasource.GtexSampleFile: "SAMPID\tSMTS\tSMTSD\nGTEX-1\tBrain\tBrain - Cortex\n",
		},
	}
	for source, sourceFiles := range files {
		dir := filepath.Join(root, source, "2026-02-14")
		require.NoError(t, os.MkdirAll(dir, 0755))
		for name, content := range sourceFiles {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
		}
	}
}

func TestRunPlan(t *testing.T) {
	root := t.TempDir()
	seedPlanData(t, root)
	buf := withTestConfig(t, root)

	// Execute would set a background context on the command; calling
	// the RunE directly skips that, so set it here.
	planCmd.SetContext(context.Background())
	require.NoError(t, runPlanCmd(planCmd, nil))

	out := buf.String()
	assert.Contains(t, out, "Merge Plan")
	assert.Contains(t, out, "Gene")
	assert.Contains(t, out, "PARTICIPATES_IN")

	// Node sets are listed before relationship sets.
	assert.Less(t, strings.Index(out, "Node Sets"), strings.Index(out, "Relationship Sets"))
	assert.Less(t, strings.Index(out, "Gene (keys: gene_id"), strings.Index(out, "PARTICIPATES_IN"))
}

func TestRunPlanBadConfig(t *testing.T) {
	originalCfgFile := cfgFile
	cfgFile = "nonexistent-config.yaml"
	defer func() { cfgFile = originalCfgFile }()

	err := runPlanCmd(planCmd, nil)
	assert.Error(t, err)
}
