package domain

import (
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	kpidomain "github.com/smallbiznis/hsekpi/internal/kpisource/domain"
)

// PoleIndex groups the projects in scope by pole. Every section iterates the
// same index so poles without records still appear.
type PoleIndex struct {
	poles    []Pole
	projects map[string][]kpidomain.Project
	poleOf   map[snowflake.ID]string
}

func NewPoleIndex(projects []kpidomain.Project) *PoleIndex {
	idx := &PoleIndex{
		projects: make(map[string][]kpidomain.Project),
		poleOf:   make(map[snowflake.ID]string, len(projects)),
	}
	labels := make(map[string]string)
	for _, p := range projects {
		label := strings.TrimSpace(p.Pole)
		if label == "" {
			label = UnassignedPole
		}
		key := slug.Make(label)
		if _, ok := labels[key]; !ok {
			labels[key] = label
		}
		idx.projects[key] = append(idx.projects[key], p)
		idx.poleOf[p.ID] = key
	}

	for key, label := range labels {
		idx.poles = append(idx.poles, Pole{Key: key, Label: label, Projects: len(idx.projects[key])})
	}
	sort.Slice(idx.poles, func(i, j int) bool { return idx.poles[i].Key < idx.poles[j].Key })
	for key := range idx.projects {
		list := idx.projects[key]
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return idx
}

func (idx *PoleIndex) Poles() []Pole {
	out := make([]Pole, len(idx.poles))
	copy(out, idx.poles)
	return out
}

func (idx *PoleIndex) ProjectsOf(poleKey string) []kpidomain.Project {
	return idx.projects[poleKey]
}

// PoleOf returns the pole key of a project in scope.
func (idx *PoleIndex) PoleOf(projectID snowflake.ID) (string, bool) {
	key, ok := idx.poleOf[projectID]
	return key, ok
}

func ref(p kpidomain.Project) ProjectRef {
	return ProjectRef{ProjectID: p.ID, Code: p.Code, Name: p.Name}
}
