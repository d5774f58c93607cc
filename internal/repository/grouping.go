package repository

import "github.com/iliyamo/postboard/internal/model"

// GroupCommentsByPost buckets comments by their parent post id.  Within a
// bucket the comments keep the order in which they were fetched.
func GroupCommentsByPost(comments []model.Comment) map[string][]model.Comment {
	groups := make(map[string][]model.Comment)
	for _, c := range comments {
		groups[c.PostID] = append(groups[c.PostID], c)
	}
	return groups
}

// AttachComments sets each post's Comments to its bucket, or to an empty
// slice when the post has none, so the JSON field is always an array.
func AttachComments(posts []model.PostWithComments, groups map[string][]model.Comment) {
	for i := range posts {
		if cs, ok := groups[posts[i].ID]; ok {
			posts[i].Comments = cs
			continue
		}
		posts[i].Comments = []model.Comment{}
	}
}
