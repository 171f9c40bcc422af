package handler

import "net/http"

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	Health    http.HandlerFunc
	Tree      *TreeHandler
	Folders   *FolderHandler
	Websites  *WebsiteHandler
	Tags      *TagHandler
	Thumbnail *ThumbnailHandler
}

// Register mounts the API on mux (Go 1.22+ method and wildcard patterns)
func Register(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /api/users/me", GetMe)

	// Tree and search
	mux.HandleFunc("GET /api/tree", h.Tree.GetTree)
	mux.HandleFunc("GET /api/search", h.Tree.Search)

	// Folder routes
	mux.HandleFunc("GET /api/folders", h.Folders.ListFolders)
	mux.HandleFunc("POST /api/folders", h.Folders.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", h.Folders.GetFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folders.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folders.DeleteFolder)
	mux.HandleFunc("GET /api/folders/{id}/websites", h.Websites.ListByFolder)
	mux.HandleFunc("PUT /api/folders/{id}/websites/positions", h.Websites.ReorderWebsites)

	// Website routes
	mux.HandleFunc("POST /api/websites", h.Websites.CreateWebsite)
	mux.HandleFunc("GET /api/websites/starred", h.Websites.ListStarred) // More specific than {id}
	mux.HandleFunc("GET /api/websites/{id}", h.Websites.GetWebsite)
	mux.HandleFunc("PATCH /api/websites/{id}", h.Websites.UpdateWebsite)
	mux.HandleFunc("DELETE /api/websites/{id}", h.Websites.DeleteWebsite)
	mux.HandleFunc("POST /api/websites/{id}/move", h.Websites.MoveWebsite)
	mux.HandleFunc("POST /api/websites/{id}/folders", h.Websites.AddToFolder)
	mux.HandleFunc("DELETE /api/websites/{id}/folders/{folderId}", h.Websites.RemoveFromFolder)
	mux.HandleFunc("PUT /api/websites/{id}/starred", h.Websites.SetStarred)

	// Tag routes
	mux.HandleFunc("GET /api/tags", h.Tags.ListTags)
	mux.HandleFunc("POST /api/tags", h.Tags.CreateTag)
	mux.HandleFunc("PUT /api/tags/positions", h.Tags.ReorderTags)
	mux.HandleFunc("PATCH /api/tags/{id}", h.Tags.RenameTag)
	mux.HandleFunc("DELETE /api/tags/{id}", h.Tags.DeleteTag)

	// Link previews
	mux.HandleFunc("POST /api/thumbnail", h.Thumbnail.GetThumbnail)
}
