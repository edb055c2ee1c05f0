package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/talentgraph/internal/core/model"
)

func TestSelectMode(t *testing.T) {
	cases := []struct {
		name string
		q    model.Query
		want Mode
	}{
		{
			name: "free text only",
			q:    model.Query{FreeText: "cloud platform experience"},
			want: ModeDirect,
		},
		{
			name: "free text with skills",
			q:    model.Query{FreeText: "cloud platform", RequiredSkills: []string{"Kubernetes"}},
			want: ModeHybrid,
		},
		{
			name: "free text with profile",
			q:    model.Query{FreeText: "cloud platform", ProfileName: "Cloud Architect"},
			want: ModeHybrid,
		},
		{
			name: "single skill",
			q:    model.Query{RequiredSkills: []string{"Kubernetes"}},
			want: ModeLocal,
		},
		{
			name: "profile only",
			q:    model.Query{ProfileName: "Cloud Architect"},
			want: ModeLocal,
		},
		{
			name: "two skills no profile",
			q:    model.Query{RequiredSkills: []string{"Kubernetes", "AWS"}},
			want: ModeGlobal,
		},
		{
			name: "skills and level no profile",
			q:    model.Query{RequiredSkills: []string{"Kubernetes"}, ExperienceLevel: model.LevelSenior},
			want: ModeGlobal,
		},
		{
			name: "profile plus skills prefers hybrid",
			q:    model.Query{ProfileName: "Cloud Architect", RequiredSkills: []string{"Kubernetes"}},
			want: ModeHybrid,
		},
		{
			name: "profile plus preferred skills prefers hybrid",
			q:    model.Query{ProfileName: "Cloud Architect", PreferredSkills: []string{"Terraform"}},
			want: ModeHybrid,
		},
		{
			name: "profile plus level prefers hybrid",
			q:    model.Query{ProfileName: "Cloud Architect", ExperienceLevel: model.LevelSenior},
			want: ModeHybrid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SelectMode(tc.q))
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "direct", ModeDirect.String())
	assert.Equal(t, "local", ModeLocal.String())
	assert.Equal(t, "global", ModeGlobal.String())
	assert.Equal(t, "hybrid", ModeHybrid.String())
}
