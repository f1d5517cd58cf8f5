// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Menza menu tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/menza/internal/directory"
	"github.com/starford/menza/internal/favorites"
	"github.com/starford/menza/internal/filter"
	"github.com/starford/menza/internal/menuapi"
	"github.com/starford/menza/internal/models"
)

// Server wraps the MCP server with Menza tools.
type Server struct {
	mcp   *server.MCPServer
	menus *menuapi.Client
	favs  *favorites.Store
}

// New creates a new MCP server with all Menza tools registered.
func New(menus *menuapi.Client, favs *favorites.Store) *Server {
	s := &Server{menus: menus, favs: favs}

	s.mcp = server.NewMCPServer(
		"Menza",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_restaurants",
		mcp.WithDescription("List all known student restaurants with their ids. "+
			"Id 0 means all restaurants at once."),
	), s.listRestaurants)

	s.mcp.AddTool(mcp.NewTool("fetch_menu",
		mcp.WithDescription("Fetch the daily menus for a date, optionally narrowed to one restaurant."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Menu date in YYYY-MM-DD form")),
		mcp.WithString("restaurant", mcp.Description("Restaurant id from list_restaurants (empty or 0 for all)")),
	), s.fetchMenu)

	s.mcp.AddTool(mcp.NewTool("search_menu",
		mcp.WithDescription("Fetch the daily menus for a date and keep only dishes whose name matches the query."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Menu date in YYYY-MM-DD form")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Dish name substring, case-insensitive")),
		mcp.WithString("restaurant", mcp.Description("Restaurant id from list_restaurants (empty or 0 for all)")),
	), s.searchMenu)

	s.mcp.AddTool(mcp.NewTool("list_favorites",
		mcp.WithDescription("List the dishes stored as favorites."),
	), s.listFavorites)

	s.mcp.AddTool(mcp.NewTool("toggle_favorite",
		mcp.WithDescription("Add a dish to the favorites, or remove it when it is already stored."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Dish id from a fetched menu")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Dish name")),
		mcp.WithString("price", mcp.Description("Dish price as printed on the menu")),
		mcp.WithString("allergens", mcp.Description("Comma-separated allergen codes, '-' for none")),
		mcp.WithString("restaurant", mcp.Description("Restaurant name the dish came from")),
	), s.toggleFavorite)

	// Resource: allergen code legend.
	s.mcp.AddResource(
		mcp.NewResource("menza://allergens", "Allergen Legend",
			mcp.WithResourceDescription("Mapping of allergen codes used on menus to Croatian names."),
			mcp.WithMIMEType("application/json"),
		),
		s.readAllergensResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listRestaurants(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(directory.All(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) fetchMenu(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	restaurant := optionalString(req, "restaurant")

	days, err := s.menus.Fetch(ctx, date, restaurant)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}
	if len(days) == 0 {
		return mcp.NewToolResultText("no menus published for " + date), nil
	}
	out, _ := json.MarshalIndent(days, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchMenu(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	restaurant := optionalString(req, "restaurant")

	days, err := s.menus.Fetch(ctx, date, restaurant)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
	}

	matched := filter.Apply(days, filter.NewState(query, "", ""), s.favs.List())
	if len(matched) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no dishes matching %q on %s", query, date)), nil
	}
	out, _ := json.MarshalIndent(matched, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listFavorites(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	favs := s.favs.List()
	if len(favs) == 0 {
		return mcp.NewToolResultText("no favorites stored"), nil
	}
	out, _ := json.MarshalIndent(favs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) toggleFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	item := models.MenuItem{
		ID:        id,
		Title:     title,
		Price:     optionalString(req, "price"),
		Allergens: optionalString(req, "allergens"),
	}

	added, err := s.favs.Toggle(item, optionalString(req, "restaurant"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if added {
		return mcp.NewToolResultText(fmt.Sprintf("added to favorites: %s", title)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed from favorites: %s", title)), nil
}

// optionalString reads a string argument that may be absent.
func optionalString(req mcp.CallToolRequest, name string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return ""
}

func (s *Server) readAllergensResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, _ := json.MarshalIndent(models.AllergenNames, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "menza://allergens",
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
