package commands

import (
	"fmt"
	"os"

	"github.com/ast0815/ipbus-software/internal/addrtree"
	"github.com/ast0815/ipbus-software/internal/xmlnode"
	"github.com/ast0815/ipbus-software/pkg/classfactory"
	"github.com/ast0815/ipbus-software/pkg/clientfactory"
	"github.com/ast0815/ipbus-software/pkg/rbpclient"
	"github.com/ast0815/ipbus-software/pkg/rbpconfig"
)

// addrtreeCache is shared across subcommands so a repeated rbpctl
// invocation against the same process (tests, future REPL mode) only
// parses each address table once (addrtree.Cache mirrors
// NodeTreeBuilder::mNodes's per-file build cache).
var addrtreeCache = addrtree.NewCache()

// loadFile reads path from disk and parses it as an address-table
// node, serving as the addrtree.FileLoader for <module> includes.
func loadFile(path string) (xmlnode.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return xmlnode.Node{}, fmt.Errorf("rbpctl: open %q: %w", path, err)
	}
	defer f.Close()
	return xmlnode.Parse(f)
}

// buildTree resolves cfg.AddressTable.Path into a *addrtree.Tree,
// reusing the process-wide cache.
func buildTree(cfg *rbpconfig.Config) (*addrtree.Tree, error) {
	return addrtreeCache.GetOrBuild(cfg.Connection.URI, cfg.AddressTable.Path, func() (*addrtree.Tree, error) {
		root, err := loadFile(cfg.AddressTable.Path)
		if err != nil {
			return nil, err
		}
		builder := addrtree.NewBuilder(classfactory.New(), loadFile, addrtree.Policy{ThrowOnOverlap: cfg.AddressTable.ThrowOnOverlap})
		return builder.Build(root)
	})
}

// newClient loads configuration, builds the AddressTree, and dials
// the target, returning a ready-to-use *rbpclient.Client.
func newClient() (*rbpclient.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Connection.URI == "" {
		return nil, fmt.Errorf("rbpctl: no target URI set (use --uri or connection.uri in config)")
	}
	if cfg.AddressTable.Path == "" {
		return nil, fmt.Errorf("rbpctl: no address table set (use --address-table or address_table.path in config)")
	}

	tree, err := buildTree(cfg)
	if err != nil {
		return nil, fmt.Errorf("rbpctl: building address tree: %w", err)
	}

	opts := []rbpclient.Option{
		rbpclient.WithTimeout(cfg.Connection.DialTimeout),
		rbpclient.WithBufferWords(cfg.Client.BufferWords),
		rbpclient.WithWindowSize(cfg.Client.WindowSize),
	}
	if cfg.Client.StrictWriteReplyCount {
		opts = append(opts, rbpclient.WithStrictWriteReplyCount())
	}

	return rbpclient.New(cfg.Connection.URI, tree, clientfactory.NewDefault(), opts...)
}
