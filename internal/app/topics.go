package app

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// keywordTopics maps lowercase content keywords to a topic bucket. First
// match wins, scanned in this order so more specific phrases come first.
var keywordTopics = []struct {
	keyword string
	topic   string
}{
	{"big o", "Complexity Analysis"},
	{"complexity", "Complexity Analysis"},
	{"recursion", "Recursion"},
	{"recursive", "Recursion"},
	{"pointer", "Pointers & Memory"},
	{"memory", "Pointers & Memory"},
	{"stack", "Stacks & Queues"},
	{"queue", "Stacks & Queues"},
	{"tree", "Trees & Graphs"},
	{"graph", "Trees & Graphs"},
	{"sort", "Sorting & Searching"},
	{"search", "Sorting & Searching"},
	{"exam", "Logistics"},
	{"deadline", "Logistics"},
	{"homework", "Logistics"},
}

const defaultTopic = "General"

// AssignTopic buckets a question by keyword. It stands in for the
// embedding-based grouping the production pipeline does; the wire shape
// is identical either way.
func AssignTopic(content string) string {
	lower := strings.ToLower(content)
	for _, kt := range keywordTopics {
		if strings.Contains(lower, kt.keyword) {
			return kt.topic
		}
	}
	return defaultTopic
}

var pseudonymAdjectives = []string{
	"Curious", "Quiet", "Bright", "Swift", "Patient", "Bold", "Gentle", "Keen",
}

var pseudonymAnimals = []string{
	"Penguin", "Otter", "Falcon", "Badger", "Heron", "Lynx", "Marmot", "Gecko",
}

// Pseudonym is stable per (session, student) so a reader can follow one
// anonymous asker through a report without learning who they are.
func Pseudonym(sessionID, studentID uint) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d:%d", sessionID, studentID)
	sum := h.Sum32()
	adj := pseudonymAdjectives[sum%uint32(len(pseudonymAdjectives))]
	animal := pseudonymAnimals[(sum/8)%uint32(len(pseudonymAnimals))]
	return fmt.Sprintf("%s %s %d", adj, animal, sum%100)
}
