package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roomgraph/pkg/editor"
	rgerrors "github.com/matzehuels/roomgraph/pkg/errors"
	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

// =============================================================================
// Node ID Resolution
// =============================================================================

// resolveIDs expands each argument to a full node ID. An argument matches a
// node whose ID equals it or, failing that, the single node whose ID starts
// with it. Arguments that match nothing pass through unchanged so the edit
// reports the missing node.
func resolveIDs(ctx context.Context, svc *editor.Service, graph string, args []string) ([]string, error) {
	ids := make([]string, len(args))
	err := svc.View(ctx, graph, func(g *roomgraph.Graph) error {
		for i, arg := range args {
			id, err := resolveID(g, arg)
			if err != nil {
				return err
			}
			ids[i] = id
		}
		return nil
	})
	return ids, err
}

func resolveID(g *roomgraph.Graph, prefix string) (string, error) {
	if _, ok := g.Node(prefix); ok || prefix == "" {
		return prefix, nil
	}
	var matches []string
	for _, n := range g.Nodes() {
		if strings.HasPrefix(n.ID(), prefix) {
			matches = append(matches, n.ID())
		}
	}
	switch len(matches) {
	case 0:
		return prefix, nil
	case 1:
		return matches[0], nil
	default:
		return "", rgerrors.New(rgerrors.ErrCodeInvalidInput, "node prefix %q is ambiguous (%d matches)", prefix, len(matches))
	}
}

// =============================================================================
// Node Commands
// =============================================================================

// nodeCommand creates the node management command.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add, retype and delete room nodes",
	}

	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeTypeCommand())
	cmd.AddCommand(c.nodeDeleteCommand())

	return cmd
}

// nodeAddCommand creates the "node add" subcommand.
func (c *CLI) nodeAddCommand() *cobra.Command {
	var presentation string

	cmd := &cobra.Command{
		Use:   "add <graph> [type]",
		Short: "Add a node (an empty graph gets its entrance first)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, name := cmd.Context(), args[0]
			typeName := ""
			if len(args) == 2 {
				typeName = args[1]
			}

			id, err := sess.svc.AddNode(ctx, name, typeName)
			if err != nil {
				return err
			}
			if presentation != "" {
				if err := sess.svc.SetPresentation(ctx, name, id, json.RawMessage(presentation)); err != nil {
					return err
				}
			}

			if typeName == "" {
				typeName = sess.svc.Types().None().Name
			}
			printSuccess("Added %s node %s", typeName, StyleHighlight.Render(shortID(id)))
			printDetail("%s", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&presentation, "presentation", "", "opaque JSON stored with the node")
	return cmd
}

// nodeTypeCommand creates the "node type" subcommand.
func (c *CLI) nodeTypeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "type <graph> <node> [type]",
		Short: "Change a node's room type, choosing interactively when no type is given",
		Long: `Change a node's room type.

Edges that the new type makes illegal are removed and listed. Without a type
argument an interactive picker over the selectable types opens.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, name := cmd.Context(), args[0]
			ids, err := resolveIDs(ctx, sess.svc, name, args[1:2])
			if err != nil {
				return err
			}
			id := ids[0]

			var typeName string
			if len(args) == 3 {
				typeName = args[2]
			} else {
				var current string
				err := sess.svc.View(ctx, name, func(g *roomgraph.Graph) error {
					t, ok := g.TypeOf(id)
					if !ok {
						return fmt.Errorf("node %s: %w", id, roomgraph.ErrUnknownNode)
					}
					current = t.Name
					return nil
				})
				if err != nil {
					return err
				}
				picked, err := pickType(sess.svc.Types().AllDisplayable(), current)
				if err != nil {
					return err
				}
				if picked == nil {
					printInfo("Type unchanged")
					return nil
				}
				typeName = picked.Name
			}

			severed, err := sess.svc.SetNodeType(ctx, name, id, typeName)
			if err != nil {
				return err
			}
			printSuccess("Node %s is now %s", StyleHighlight.Render(shortID(id)), typeName)
			for _, e := range severed {
				printWarning("removed edge %s → %s", shortID(e.From), shortID(e.To))
			}
			return nil
		},
	}
}

// nodeDeleteCommand creates the "node delete" subcommand.
func (c *CLI) nodeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <graph> <node>...",
		Aliases: []string{"rm"},
		Short:   "Delete nodes and their edges (the entrance is kept)",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, name := cmd.Context(), args[0]
			ids, err := resolveIDs(ctx, sess.svc, name, args[1:])
			if err != nil {
				return err
			}

			if len(ids) == 1 {
				if err := sess.svc.DeleteNode(ctx, name, ids[0]); err != nil {
					return err
				}
				printSuccess("Deleted node %s", shortID(ids[0]))
				return nil
			}

			n, err := sess.svc.DeleteNodes(ctx, name, ids)
			if err != nil {
				return err
			}
			printSuccess("Deleted %d nodes", n)
			if skipped := len(ids) - n; skipped > 0 {
				printDetail("%d skipped (entrance or unknown)", skipped)
			}
			return nil
		},
	}
}

// =============================================================================
// Edge Commands
// =============================================================================

// connectCommand creates the "connect" command.
func (c *CLI) connectCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "connect <graph> <parent> <child>",
		Short: "Connect two nodes if the graph rules allow it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, name := cmd.Context(), args[0]
			ids, err := resolveIDs(ctx, sess.svc, name, args[1:])
			if err != nil {
				return err
			}
			parent, child := ids[0], ids[1]

			if check {
				err := sess.svc.View(ctx, name, func(g *roomgraph.Graph) error {
					return g.CanConnect(parent, child)
				})
				if err != nil {
					return err
				}
				printSuccess("%s → %s is allowed", shortID(parent), shortID(child))
				return nil
			}

			if err := sess.svc.Connect(ctx, name, parent, child); err != nil {
				return err
			}
			printSuccess("Connected %s → %s", shortID(parent), shortID(child))
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "only report whether the connection is allowed")
	return cmd
}

// disconnectCommand creates the "disconnect" command.
func (c *CLI) disconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <graph> <parent> <child>",
		Short: "Remove the edge between two nodes",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, name := cmd.Context(), args[0]
			ids, err := resolveIDs(ctx, sess.svc, name, args[1:])
			if err != nil {
				return err
			}

			removed, err := sess.svc.Disconnect(ctx, name, ids[0], ids[1])
			if err != nil {
				return err
			}
			if !removed {
				printWarning("No edge %s → %s", shortID(ids[0]), shortID(ids[1]))
				return nil
			}
			printSuccess("Disconnected %s → %s", shortID(ids[0]), shortID(ids[1]))
			return nil
		},
	}
}

// unlinkCommand creates the "unlink" command.
func (c *CLI) unlinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <graph> <node>...",
		Short: "Remove every edge between the given nodes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.openSession(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx, name := cmd.Context(), args[0]
			ids, err := resolveIDs(ctx, sess.svc, name, args[1:])
			if err != nil {
				return err
			}

			n, err := sess.svc.Unlink(ctx, name, ids)
			if err != nil {
				return err
			}
			printSuccess("Removed %d edges", n)
			return nil
		},
	}
}
