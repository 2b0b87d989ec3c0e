package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	rgerrors "github.com/matzehuels/roomgraph/pkg/errors"
	rgio "github.com/matzehuels/roomgraph/pkg/io"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var maxChildCorridors int

	cmd := &cobra.Command{
		Use:   "new <graph>",
		Short: "Create an empty graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-child-corridors") {
				if maxChildCorridors <= 0 {
					return fmt.Errorf("--max-child-corridors must be positive, got %d", maxChildCorridors)
				}
				cfg.MaxChildCorridors = maxChildCorridors
			}
			sess, err := c.openSessionWith(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			name := args[0]
			if err := sess.svc.Create(cmd.Context(), name); err != nil {
				return err
			}
			printSuccess("Created graph %s", StyleHighlight.Render(name))
			printDetail("max %d child corridors per room", cfg.MaxChildCorridors)
			printNextStep("Add the first room", "roomgraph node add "+name+" SmallRoom")
			return nil
		},
	}

	cmd.Flags().IntVar(&maxChildCorridors, "max-child-corridors", 0, "corridors a room may branch into (default from config)")
	return cmd
}

// listCommand creates the "list" command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored graphs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			names, err := sess.svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printInfo("No graphs in %s store", sess.cfg.Store)
				return nil
			}
			for _, name := range names {
				snap, err := sess.svc.Get(cmd.Context(), name)
				if err != nil {
					printError("%s: %v", name, err)
					continue
				}
				printKeyValue(name, fmt.Sprintf("%d nodes", len(snap.Nodes)))
			}
			return nil
		},
	}
}

// removeCommand creates the "rm" command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <graph>...",
		Short: "Delete stored graphs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			for _, name := range args {
				if err := sess.svc.Remove(cmd.Context(), name); err != nil {
					return err
				}
				printSuccess("Removed %s", name)
			}
			return nil
		},
	}
}

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <graph>",
		Short: "Print a graph as a tree rooted at the entrance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			name := args[0]
			return sess.svc.View(cmd.Context(), name, func(g *roomgraph.Graph) error {
				fmt.Fprintln(stdout, StyleTitle.Render(name))
				printStats(g.Len(), g.EdgeCount())
				printNewline()
				if g.Len() == 0 {
					printInfo("Graph is empty")
					return nil
				}
				fmt.Fprintln(stdout, renderGraph(g))
				return nil
			})
		},
	}
}

// renderGraph draws g as trees: the entrance tree first, then every other
// root, then nodes only reachable through a cycle.
func renderGraph(g *roomgraph.Graph) string {
	seen := make(map[string]bool, g.Len())
	var b strings.Builder

	if e, ok := g.Entrance(); ok {
		b.WriteString(buildTree(g, e.ID(), seen).String())
		b.WriteString("\n")
	}

	var detached []string
	for _, n := range g.Nodes() {
		if !seen[n.ID()] && len(n.ParentIDs()) == 0 {
			detached = append(detached, n.ID())
		}
	}
	for _, n := range g.Nodes() {
		if !seen[n.ID()] && !slices.Contains(detached, n.ID()) {
			detached = append(detached, n.ID())
		}
	}
	if len(detached) == 0 {
		return strings.TrimSuffix(b.String(), "\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("detached"))
	b.WriteString("\n")
	for _, id := range detached {
		if seen[id] {
			continue
		}
		b.WriteString(buildTree(g, id, seen).String())
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// buildTree builds the subtree below id, marking visited nodes in seen.
func buildTree(g *roomgraph.Graph, id string, seen map[string]bool) *tree.Tree {
	seen[id] = true
	t := tree.Root(nodeLabel(g, id)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(lipgloss.NewStyle().Foreground(colorDim))
	for _, child := range g.Children(id) {
		if seen[child] {
			t.Child(nodeLabel(g, child) + StyleDim.Render(" (cycle)"))
			continue
		}
		t.Child(buildTree(g, child, seen))
	}
	return t
}

func nodeLabel(g *roomgraph.Graph, id string) string {
	t, ok := g.TypeOf(id)
	if !ok {
		return id
	}
	return styleForType(t).Render(t.Name) + " " + StyleDim.Render(shortID(id))
}

// validateCommand creates the "validate" command.
func (c *CLI) validateCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate [graph]",
		Short: "Check a stored graph or a JSON document against the graph rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (len(args) == 0) {
				return errors.New("give either a graph name or --file")
			}

			if file != "" {
				cfg, err := c.resolveConfig(cmd)
				if err != nil {
					return err
				}
				types, err := loadTypes(cfg.Types)
				if err != nil {
					return err
				}
				g, err := rgio.ImportJSON(file, types, roomgraph.WithMaxChildCorridors(cfg.MaxChildCorridors))
				if err != nil {
					printError("%s is invalid", file)
					return err
				}
				printSuccess("%s is valid", file)
				printStats(g.Len(), g.EdgeCount())
				return nil
			}

			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			name := args[0]
			return sess.svc.View(cmd.Context(), name, func(g *roomgraph.Graph) error {
				printSuccess("%s is valid", name)
				printStats(g.Len(), g.EdgeCount())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "validate a JSON graph document instead of a stored graph")
	return cmd
}

// importCommand creates the "import" command.
func (c *CLI) importCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "import <graph> <file>",
		Short: "Store a JSON graph document under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			name, file := args[0], args[1]

			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			if !force {
				_, err := sess.svc.Get(ctx, name)
				if err == nil {
					return rgerrors.New(rgerrors.ErrCodeGraphExists, "graph %s already exists (use --force to replace it)", name)
				}
				if rgerrors.GetCode(err) != rgerrors.ErrCodeGraphNotFound {
					return err
				}
			}

			prog := newProgress(logger)
			g, err := rgio.ImportJSON(file, sess.svc.Types())
			if err != nil {
				return err
			}
			if err := sess.svc.Put(ctx, name, g.Snapshot()); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Imported %d nodes", g.Len()))

			printSuccess("Imported %s", StyleHighlight.Render(name))
			printStats(g.Len(), g.EdgeCount())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace an existing graph")
	return cmd
}

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <graph>",
		Short: "Write a stored graph as a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			return sess.svc.View(cmd.Context(), args[0], func(g *roomgraph.Graph) error {
				if output == "" {
					return rgio.WriteJSON(g, stdout)
				}
				if err := rgio.ExportJSON(g, output); err != nil {
					return err
				}
				printSuccess("Exported %s", args[0])
				printFile(output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// typesCommand creates the "types" command.
func (c *CLI) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the room types of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd)
			if err != nil {
				return err
			}
			types, err := loadTypes(cfg.Types)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, renderTypeTable(types.All()))
			return nil
		},
	}
}
