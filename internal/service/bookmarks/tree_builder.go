package bookmarks

import (
	"sort"
	"strings"

	models "savesite/internal/domain/models/bookmarks"
)

// AssembleTree nests a user's flat folders and websites into one rooted tree.
//
// Folders are linked to their parents in one indexing pass and the tree is
// built depth-first from the top-level folders (ParentID == nil). A visited
// set stops the walk on cyclic parent data. Each website is attached to every
// folder it is a member of, sorted by its position there.
//
// Root policy: a single top-level folder is the root; several are wrapped in
// a virtual root; none yields nil.
func AssembleTree(userID string, folders []models.Folder, websites []models.Website) *models.FolderNode {
	nodes := make(map[string]*models.FolderNode, len(folders))
	childIDs := make(map[string][]string)
	var topLevel []string

	// First pass: create nodes and index children by parent
	for _, folder := range folders {
		nodes[folder.ID] = &models.FolderNode{
			ID:        folder.ID,
			Name:      folder.Name,
			UserID:    folder.UserID,
			ParentID:  folder.ParentID,
			CreatedAt: folder.CreatedAt,
			Children:  []*models.FolderNode{},
			Websites:  []models.Website{},
		}
		if folder.ParentID == nil {
			topLevel = append(topLevel, folder.ID)
		} else {
			childIDs[*folder.ParentID] = append(childIDs[*folder.ParentID], folder.ID)
		}
	}

	// Second pass: attach websites to every folder they belong to
	for _, website := range websites {
		for _, m := range website.Memberships {
			node, ok := nodes[m.FolderID]
			if !ok {
				continue
			}
			w := website
			w.Position = m.Position
			node.Websites = append(node.Websites, w)
		}
	}
	for _, node := range nodes {
		sortWebsites(node.Websites)
	}

	// Third pass: link depth-first from the top level
	visited := make(map[string]bool, len(folders))
	var link func(id string) *models.FolderNode
	link = func(id string) *models.FolderNode {
		visited[id] = true
		node := nodes[id]
		for _, childID := range childIDs[id] {
			if visited[childID] {
				continue
			}
			node.Children = append(node.Children, link(childID))
		}
		return node
	}

	roots := make([]*models.FolderNode, 0, len(topLevel))
	for _, id := range topLevel {
		if !visited[id] {
			roots = append(roots, link(id))
		}
	}

	switch len(roots) {
	case 0:
		return nil
	case 1:
		return roots[0]
	default:
		return &models.FolderNode{
			ID:       models.RootFolderID,
			Name:     models.VirtualRootName,
			UserID:   userID,
			Virtual:  true,
			Children: roots,
			Websites: []models.Website{},
		}
	}
}

// EmptyRoot is the tree of a user without folders.
func EmptyRoot(userID string) *models.FolderNode {
	return &models.FolderNode{
		ID:       models.RootFolderID,
		Name:     models.VirtualRootName,
		UserID:   userID,
		Virtual:  true,
		Children: []*models.FolderNode{},
		Websites: []models.Website{},
	}
}

// FlattenTree is the inverse of AssembleTree. The virtual root is dropped,
// parent ids are taken from the nesting, and every website is returned once
// with one membership per folder it appeared in.
func FlattenTree(root *models.FolderNode) ([]models.Folder, []models.Website) {
	folders := []models.Folder{}
	websites := []models.Website{}
	if root == nil {
		return folders, websites
	}

	websiteIndex := make(map[string]int)
	var walk func(node *models.FolderNode, parentID *string)
	walk = func(node *models.FolderNode, parentID *string) {
		var childParent *string
		if !node.Virtual {
			id := node.ID
			childParent = &id
			folders = append(folders, models.Folder{
				ID:        node.ID,
				Name:      node.Name,
				UserID:    node.UserID,
				ParentID:  parentID,
				CreatedAt: node.CreatedAt,
			})
			for _, w := range node.Websites {
				m := models.Membership{FolderID: node.ID, Position: w.Position}
				if i, seen := websiteIndex[w.ID]; seen {
					websites[i].Memberships = append(websites[i].Memberships, m)
					continue
				}
				w.Memberships = []models.Membership{m}
				websiteIndex[w.ID] = len(websites)
				websites = append(websites, w)
			}
		}
		for _, child := range node.Children {
			walk(child, childParent)
		}
	}
	walk(root, nil)

	return folders, websites
}

// SearchTree matches folder names and website title, link or description
// case-insensitively, depth-first. Path is the " > " joined chain of folder
// names from the root down to the folder (for websites, the containing folder).
func SearchTree(root *models.FolderNode, query string) []models.SearchResult {
	results := []models.SearchResult{}
	q := strings.ToLower(strings.TrimSpace(query))
	if root == nil || q == "" {
		return results
	}

	var walk func(node *models.FolderNode, parentPath []string)
	walk = func(node *models.FolderNode, parentPath []string) {
		currentPath := append(append([]string{}, parentPath...), node.Name)
		path := strings.Join(currentPath, " > ")

		if !node.Virtual && contains(node.Name, q) {
			results = append(results, models.SearchResult{
				Kind: models.SearchResultFolder,
				Folder: &models.FolderNode{
					ID:        node.ID,
					Name:      node.Name,
					UserID:    node.UserID,
					ParentID:  node.ParentID,
					CreatedAt: node.CreatedAt,
				},
				Path: path,
			})
		}

		for i := range node.Websites {
			w := node.Websites[i]
			if contains(w.Title, q) || contains(w.Link, q) || (w.Description != nil && contains(*w.Description, q)) {
				results = append(results, models.SearchResult{
					Kind:    models.SearchResultWebsite,
					Website: &w,
					Path:    path,
				})
			}
		}

		for _, child := range node.Children {
			walk(child, currentPath)
		}
	}
	walk(root, nil)

	return results
}

func contains(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

// sortWebsites orders by position, ties by title.
func sortWebsites(websites []models.Website) {
	sort.SliceStable(websites, func(i, j int) bool {
		if websites[i].Position != websites[j].Position {
			return websites[i].Position < websites[j].Position
		}
		return websites[i].Title < websites[j].Title
	})
}
