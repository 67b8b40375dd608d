package graph

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

func pub(id string, authors ...model.PersonID) model.Publication {
	return model.Publication{ID: id, Type: model.TypeArticle, Year: 2020, AuthorIDs: authors}
}

func TestBuildThreeAuthorScenario(t *testing.T) {
	pubs := []model.Publication{
		pub("p1", "A", "B"),
		pub("p2", "A", "B"),
		pub("p3", "A", "C"),
	}

	s, stats := Build([]model.PersonID{"A"}, pubs, nil)

	require.Equal(t, 3, stats.Nodes)
	require.Equal(t, 2, stats.Links)
	require.Zero(t, stats.Skipped)

	a, _ := s.NodeByID("A")
	b, _ := s.NodeByID("B")
	c, _ := s.NodeByID("C")

	assert.Equal(t, map[model.PersonID]int{"B": 2, "C": 1}, a.CoauthorIDs)
	assert.Equal(t, map[model.PersonID]int{"A": 2}, b.CoauthorIDs)
	assert.Equal(t, map[model.PersonID]int{"A": 1}, c.CoauthorIDs)

	assert.Equal(t, 3, a.OccurrenceCount)
	assert.Equal(t, 2, b.OccurrenceCount)
	assert.Equal(t, 1, c.OccurrenceCount)

	ab, ok := s.LinkBetween("B", "A")
	require.True(t, ok)
	assert.Equal(t, 2, ab.PublicationsCount)
	assert.InDelta(t, 1.0, ab.Intensity, 1e-9)

	ac, ok := s.LinkBetween("A", "C")
	require.True(t, ok)
	assert.InDelta(t, 0.5, ac.Intensity, 1e-9)
}

func TestBuildSkipsPublicationsWithoutAuthors(t *testing.T) {
	pubs := []model.Publication{
		{ID: "empty"},
		{ID: "blank", AuthorIDs: []model.PersonID{"", ""}},
		pub("ok", "A", "B"),
	}

	s, stats := Build(nil, pubs, nil)

	assert.Equal(t, 2, stats.Skipped)
	assert.Len(t, s.Nodes, 2)
	assert.Len(t, s.Links, 1)
}

func TestBuildCountsDuplicateAuthorOnce(t *testing.T) {
	s, _ := Build(nil, []model.Publication{pub("p", "A", "A", "B")}, nil)

	a, _ := s.NodeByID("A")
	assert.Equal(t, 1, a.OccurrenceCount)
	assert.Equal(t, 1, a.CoauthorIDs["B"])
	_, self := a.CoauthorIDs["A"]
	assert.False(t, self)
}

func TestBuildKeepsOriginalAuthorsWithoutPublications(t *testing.T) {
	people := map[model.PersonID]model.Person{
		"A": {ID: "A", Name: "Ada Lovelace"},
	}
	s, _ := Build([]model.PersonID{"A", "A"}, nil, people)

	require.Len(t, s.Nodes, 1)
	assert.Equal(t, "Ada Lovelace", s.Nodes[0].Person.Name)
	assert.True(t, s.IsOriginal("A"))
	assert.Equal(t, []model.PersonID{"A"}, s.OriginalAuthorIDs)
}

func TestBuildIsDeterministic(t *testing.T) {
	pubs := []model.Publication{
		pub("p1", "X", "Y", "Z"),
		pub("p2", "Z", "W"),
		pub("p3", "Y", "W", "X"),
	}
	s1, _ := Build([]model.PersonID{"W"}, pubs, nil)
	s2, _ := Build([]model.PersonID{"W"}, pubs, nil)

	require.Equal(t, len(s1.Nodes), len(s2.Nodes))
	for i := range s1.Nodes {
		assert.Equal(t, s1.Nodes[i].ID(), s2.Nodes[i].ID())
		assert.Equal(t, s1.Nodes[i].CoauthorIDs, s2.Nodes[i].CoauthorIDs)
	}
	require.Equal(t, len(s1.Links), len(s2.Links))
	for i := range s1.Links {
		assert.Equal(t, s1.Links[i].Source, s2.Links[i].Source)
		assert.Equal(t, s1.Links[i].Target, s2.Links[i].Target)
		assert.Equal(t, s1.Links[i].PublicationsCount, s2.Links[i].PublicationsCount)
	}
}

func TestBindResolvesEndpoints(t *testing.T) {
	s, _ := Build(nil, []model.Publication{pub("p", "A", "B")}, nil)
	l := s.Links[0]

	_, _, ok := s.Ends(l)
	assert.False(t, ok, "unbound link must not resolve")

	require.Zero(t, s.Bind())
	src, dst, ok := s.Ends(l)
	require.True(t, ok)
	assert.Same(t, s.Nodes[s.AuthorsMap["A"]], src)
	assert.Same(t, s.Nodes[s.AuthorsMap["B"]], dst)

	s.Unbind()
	assert.Equal(t, Unbound{ID: "A"}, l.Source)
}

// genPublications produces small publication sets over a fixed pool of ids.
func genPublications() gopter.Gen {
	author := gen.IntRange(0, 7).Map(func(i int) model.PersonID {
		return model.PersonID(fmt.Sprintf("p%d", i))
	})
	authors := gen.SliceOfN(4, author)
	return gen.SliceOf(authors).Map(func(lists [][]model.PersonID) []model.Publication {
		pubs := make([]model.Publication, len(lists))
		for i, l := range lists {
			pubs[i] = pub(fmt.Sprintf("pub%d", i), l...)
		}
		return pubs
	})
}

func TestBuildProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("coauthor counts are symmetric and match link weights", prop.ForAll(
		func(pubs []model.Publication) bool {
			s, _ := Build(nil, pubs, nil)
			for _, n := range s.Nodes {
				for other, count := range n.CoauthorIDs {
					m, ok := s.NodeByID(other)
					if !ok || m.CoauthorIDs[n.ID()] != count {
						return false
					}
					l, ok := s.LinkBetween(n.ID(), other)
					if !ok || l.PublicationsCount != count {
						return false
					}
				}
			}
			return true
		},
		genPublications(),
	))

	properties.Property("coauthor weight sum equals shared publication slots", prop.ForAll(
		func(pubs []model.Publication) bool {
			s, _ := Build(nil, pubs, nil)
			want := make(map[model.PersonID]int)
			for _, p := range pubs {
				authors := uniqueAuthors(nil, p.AuthorIDs)
				for _, id := range authors {
					want[id] += len(authors) - 1
				}
			}
			for _, n := range s.Nodes {
				sum := 0
				for _, c := range n.CoauthorIDs {
					sum += c
				}
				if sum != want[n.ID()] {
					return false
				}
			}
			return true
		},
		genPublications(),
	))

	properties.Property("every link endpoint exists in the authors map", prop.ForAll(
		func(pubs []model.Publication) bool {
			s, _ := Build(nil, pubs, nil)
			if s.Bind() != 0 {
				return false
			}
			for _, l := range s.Links {
				if _, _, ok := s.Ends(l); !ok {
					return false
				}
			}
			return true
		},
		genPublications(),
	))

	properties.TestingRun(t)
}
