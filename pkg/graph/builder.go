package graph

import (
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/model"
)

// BuildStats summarizes one Build call.
type BuildStats struct {
	Publications int
	Skipped      int
	Nodes        int
	Links        int
}

// Build turns a publication set into a coauthor graph.
//
// Every unordered pair of distinct authors on a publication adds one to the
// shared count on both nodes and on the link joining them. Nodes are created
// the first time an id is seen; original authors are created up front so they
// appear even without publications. Records without author ids are skipped.
// people supplies display names and may be nil.
func Build(originalAuthorIDs []model.PersonID, publications []model.Publication, people map[model.PersonID]model.Person) (*State, BuildStats) {
	s := &State{
		AuthorsMap:   make(map[model.PersonID]NodeRef),
		Options:      DefaultOptions(),
		Publications: publications,
		original:     make(map[model.PersonID]bool, len(originalAuthorIDs)),
		linkIndex:    make(map[pairKey]int),
	}
	stats := BuildStats{Publications: len(publications)}

	for _, id := range originalAuthorIDs {
		if id == "" || s.original[id] {
			continue
		}
		s.original[id] = true
		s.OriginalAuthorIDs = append(s.OriginalAuthorIDs, id)
		s.ensureNode(id, people)
	}

	authors := make([]model.PersonID, 0, 16)
	for _, pub := range publications {
		authors = uniqueAuthors(authors[:0], pub.AuthorIDs)
		if len(authors) == 0 {
			stats.Skipped++
			continue
		}

		for _, id := range authors {
			s.ensureNode(id, people).OccurrenceCount++
		}

		for i := 0; i < len(authors); i++ {
			for j := i + 1; j < len(authors); j++ {
				s.addCoauthorship(authors[i], authors[j])
			}
		}
	}

	maxCount := 0
	for _, l := range s.Links {
		if l.PublicationsCount > maxCount {
			maxCount = l.PublicationsCount
		}
	}
	for _, l := range s.Links {
		l.Intensity = normalize(l.PublicationsCount, maxCount)
	}

	stats.Nodes = len(s.Nodes)
	stats.Links = len(s.Links)
	return s, stats
}

func (s *State) ensureNode(id model.PersonID, people map[model.PersonID]model.Person) *Node {
	if ref, ok := s.AuthorsMap[id]; ok {
		return s.Nodes[ref]
	}
	person, ok := people[id]
	if !ok {
		person = model.Person{ID: id}
	}
	person.ID = id

	n := &Node{
		Person:      person,
		Index:       NodeRef(len(s.Nodes)),
		CoauthorIDs: make(map[model.PersonID]int),
	}
	s.Nodes = append(s.Nodes, n)
	s.AuthorsMap[id] = n.Index
	return n
}

func (s *State) addCoauthorship(a, b model.PersonID) {
	na := s.Nodes[s.AuthorsMap[a]]
	nb := s.Nodes[s.AuthorsMap[b]]
	na.CoauthorIDs[b]++
	nb.CoauthorIDs[a]++

	key := newPairKey(a, b)
	if i, ok := s.linkIndex[key]; ok {
		s.Links[i].PublicationsCount++
		return
	}
	l := &Link{
		Index:             len(s.Links),
		Source:            Unbound{ID: a},
		Target:            Unbound{ID: b},
		PublicationsCount: 1,
	}
	s.linkIndex[key] = l.Index
	s.Links = append(s.Links, l)
}

// uniqueAuthors appends the non-empty, de-duplicated ids of in to dst,
// preserving first-listed order.
func uniqueAuthors(dst, in []model.PersonID) []model.PersonID {
	for _, id := range in {
		if id == "" {
			continue
		}
		dup := false
		for _, seen := range dst {
			if seen == id {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, id)
		}
	}
	return dst
}

func normalize(v, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(v) / float64(max)
}
