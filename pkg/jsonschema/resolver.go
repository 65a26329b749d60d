// Package jsonschema expands $ref pointers in data schema documents before
// they are parsed into schema.Schema values.
package jsonschema

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-jsonforms/pkg/schema"
)

const (
	defaultMaxDocuments = 64
	defaultMaxRefDepth  = 32
)

// ResolveOptions configures $ref expansion.
type ResolveOptions struct {
	// AllowHTTPRefs toggles refs pointing at http(s) documents.
	AllowHTTPRefs bool
	// AllowPathTraversal permits relative refs to escape the root directory.
	AllowPathTraversal bool
	// MaxDocuments caps the number of documents loaded in one pass.
	MaxDocuments int
	// MaxRefDepth caps the length of a $ref chain.
	MaxRefDepth int
}

// Resolver expands $ref pointers. External refs are loaded through the
// supplied loader; a nil loader limits expansion to local pointers.
type Resolver struct {
	loader schema.Loader
	opts   ResolveOptions
}

// NewResolver constructs a Resolver.
func NewResolver(loader schema.Loader, opts ResolveOptions) *Resolver {
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = defaultMaxDocuments
	}
	if opts.MaxRefDepth <= 0 {
		opts.MaxRefDepth = defaultMaxRefDepth
	}
	return &Resolver{loader: loader, opts: opts}
}

// Dereference parses raw as a standalone document and expands its local refs.
func Dereference(raw []byte) (*schema.Schema, error) {
	doc, err := schema.NewDocument(schema.SourceFromFS("inline.json"), raw)
	if err != nil {
		return nil, err
	}
	return NewResolver(nil, ResolveOptions{}).Resolve(context.Background(), doc)
}

// DereferenceNode expands the refs of node, resolving local pointers against
// root. Used for schemas embedded in larger documents.
func DereferenceNode(root *schema.OrderedObject, node any) (*schema.Schema, error) {
	if root == nil {
		return nil, errors.New("jsonschema: root document is nil")
	}
	r := NewResolver(nil, ResolveOptions{})
	session := &session{resolver: r, cache: make(map[string]*document)}
	doc, err := session.register(schema.SourceFromFS("inline.json"), root)
	if err != nil {
		return nil, err
	}
	session.rootDir = doc.baseDir
	resolved, err := session.resolveNode(context.Background(), doc, node, &refStack{})
	if err != nil {
		return nil, err
	}
	return schema.FromOrdered(resolved)
}

// Resolve expands every $ref reachable from the document root and parses the
// result. Definitions containers are copied as-is so unused recursive
// definitions do not trip the cycle guard.
func (r *Resolver) Resolve(ctx context.Context, doc schema.Document) (*schema.Schema, error) {
	if r == nil {
		return nil, errors.New("jsonschema: resolver is nil")
	}
	if doc.Source() == nil {
		return nil, errors.New("jsonschema: source is nil")
	}
	payload, err := schema.DecodeOrdered(doc.Raw())
	if err != nil {
		return nil, err
	}
	if _, ok := payload.(*schema.OrderedObject); !ok {
		return nil, errors.New("jsonschema: root must be an object")
	}

	session := &session{resolver: r, cache: make(map[string]*document)}
	root, err := session.register(doc.Source(), payload)
	if err != nil {
		return nil, err
	}
	session.rootDir = root.baseDir

	resolved, err := session.resolveNode(ctx, root, payload, &refStack{})
	if err != nil {
		return nil, err
	}
	return schema.FromOrdered(resolved)
}

type document struct {
	key     string
	kind    schema.SourceKind
	loc     string
	baseDir string
	data    any
}

type session struct {
	resolver *Resolver
	cache    map[string]*document
	rootDir  string
}

var skipKeys = map[string]struct{}{
	"definitions": {},
	"$defs":       {},
	"enum":        {},
	"const":       {},
	"default":     {},
	"examples":    {},
}

func (s *session) resolveNode(ctx context.Context, doc *document, node any, stack *refStack) (any, error) {
	switch typed := node.(type) {
	case *schema.OrderedObject:
		if raw, ok := typed.Get("$ref"); ok {
			ref, isString := raw.(string)
			if isString && strings.TrimSpace(ref) != "" {
				return s.expand(ctx, doc, strings.TrimSpace(ref), typed, stack)
			}
		}
		out := schema.NewOrderedObject()
		for pair := typed.Oldest(); pair != nil; pair = pair.Next() {
			if _, skip := skipKeys[pair.Key]; skip {
				out.Set(pair.Key, pair.Value)
				continue
			}
			if pair.Key == "properties" || pair.Key == "patternProperties" {
				members, ok := pair.Value.(*schema.OrderedObject)
				if !ok {
					out.Set(pair.Key, pair.Value)
					continue
				}
				resolvedMembers := schema.NewOrderedObject()
				for member := members.Oldest(); member != nil; member = member.Next() {
					child, err := s.resolveNode(ctx, doc, member.Value, stack)
					if err != nil {
						return nil, err
					}
					resolvedMembers.Set(member.Key, child)
				}
				out.Set(pair.Key, resolvedMembers)
				continue
			}
			child, err := s.resolveNode(ctx, doc, pair.Value, stack)
			if err != nil {
				return nil, err
			}
			out.Set(pair.Key, child)
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(typed))
		for _, entry := range typed {
			child, err := s.resolveNode(ctx, doc, entry, stack)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
		return out, nil
	default:
		return node, nil
	}
}

func (s *session) expand(ctx context.Context, doc *document, ref string, refObj *schema.OrderedObject, stack *refStack) (any, error) {
	target, targetDoc, key, err := s.lookup(ctx, doc, ref)
	if err != nil {
		return nil, err
	}
	if stack.len() >= s.resolver.opts.MaxRefDepth {
		return nil, fmt.Errorf("jsonschema: ref depth exceeds %d", s.resolver.opts.MaxRefDepth)
	}
	if stack.contains(key) {
		return nil, fmt.Errorf("jsonschema: ref cycle detected at %s", ref)
	}
	merged, err := mergeSiblings(target, refObj)
	if err != nil {
		return nil, err
	}
	stack.push(key)
	defer stack.pop()
	return s.resolveNode(ctx, targetDoc, merged, stack)
}

func (s *session) lookup(ctx context.Context, doc *document, ref string) (any, *document, string, error) {
	refPath, fragment := splitRef(ref)
	target := doc
	if refPath != "" {
		src, err := s.sourceFor(doc, refPath)
		if err != nil {
			return nil, nil, "", err
		}
		target, err = s.load(ctx, src)
		if err != nil {
			return nil, nil, "", err
		}
	}
	value, err := resolvePointer(target.data, fragment)
	if err != nil {
		return nil, nil, "", fmt.Errorf("jsonschema: resolve %q: %w", ref, err)
	}
	return value, target, target.key + "#" + fragment, nil
}

func (s *session) sourceFor(doc *document, refPath string) (schema.Source, error) {
	parsed, err := url.Parse(refPath)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: invalid ref %q", refPath)
	}
	switch {
	case parsed.Scheme == "http" || parsed.Scheme == "https":
		if !s.resolver.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema: http refs disabled (%s)", refPath)
		}
		return schema.SourceFromURL(parsed.String()), nil
	case parsed.Scheme == "file":
		return schema.SourceFromFile(parsed.Path), nil
	case parsed.Scheme != "":
		return nil, fmt.Errorf("jsonschema: unsupported ref scheme %q", parsed.Scheme)
	}

	switch doc.kind {
	case schema.SourceKindFile:
		candidate := parsed.Path
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(doc.baseDir, candidate)
		}
		candidate = filepath.Clean(candidate)
		if !s.resolver.opts.AllowPathTraversal {
			rel, err := filepath.Rel(s.rootDir, candidate)
			if err != nil || strings.HasPrefix(rel, "..") {
				return nil, fmt.Errorf("jsonschema: ref path escapes root (%s)", refPath)
			}
		}
		return schema.SourceFromFile(candidate), nil
	case schema.SourceKindFS:
		candidate := strings.TrimPrefix(path.Clean(path.Join(doc.baseDir, parsed.Path)), "/")
		if !s.resolver.opts.AllowPathTraversal && escapesFS(s.rootDir, candidate) {
			return nil, fmt.Errorf("jsonschema: ref path escapes root (%s)", refPath)
		}
		return schema.SourceFromFS(candidate), nil
	case schema.SourceKindURL:
		if !s.resolver.opts.AllowHTTPRefs {
			return nil, fmt.Errorf("jsonschema: http refs disabled (%s)", refPath)
		}
		base, err := url.Parse(doc.loc)
		if err != nil {
			return nil, err
		}
		return schema.SourceFromURL(base.ResolveReference(parsed).String()), nil
	default:
		return nil, errors.New("jsonschema: unsupported source kind")
	}
}

func escapesFS(root, candidate string) bool {
	root = strings.TrimPrefix(path.Clean(root), "/")
	if root == "." || root == "" {
		return strings.HasPrefix(candidate, "..")
	}
	return candidate != root && !strings.HasPrefix(candidate, root+"/")
}

func (s *session) load(ctx context.Context, src schema.Source) (*document, error) {
	key, _, _ := canonical(src)
	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}
	if s.resolver.loader == nil {
		return nil, fmt.Errorf("jsonschema: no loader configured for external ref %s", src.Location())
	}
	if len(s.cache) >= s.resolver.opts.MaxDocuments {
		return nil, fmt.Errorf("jsonschema: exceeded max documents (%d)", s.resolver.opts.MaxDocuments)
	}
	doc, err := s.resolver.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	payload, err := schema.DecodeOrdered(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %s: %w", src.Location(), err)
	}
	return s.register(src, payload)
}

func (s *session) register(src schema.Source, payload any) (*document, error) {
	key, loc, baseDir := canonical(src)
	if key == "" {
		return nil, errors.New("jsonschema: unsupported source kind")
	}
	doc := &document{key: key, kind: src.Kind(), loc: loc, baseDir: baseDir, data: payload}
	s.cache[key] = doc
	return doc, nil
}

func canonical(src schema.Source) (key, location, baseDir string) {
	location = src.Location()
	switch src.Kind() {
	case schema.SourceKindFile:
		abs, err := filepath.Abs(location)
		if err != nil {
			abs = filepath.Clean(location)
		}
		return "file:" + abs, abs, filepath.Dir(abs)
	case schema.SourceKindFS:
		cleaned := path.Clean(strings.TrimPrefix(location, "/"))
		return "fs:" + cleaned, cleaned, path.Dir(cleaned)
	case schema.SourceKindURL:
		return "url:" + location, location, path.Dir(location)
	default:
		return "", location, ""
	}
}

func splitRef(ref string) (string, string) {
	refPath, fragment, _ := strings.Cut(ref, "#")
	return refPath, fragment
}

// resolvePointer walks an RFC 6901 pointer (without the leading '#').
func resolvePointer(root any, pointer string) (any, error) {
	if pointer == "" || pointer == "/" {
		return root, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("anchors are not supported (%q)", pointer)
	}
	current := root
	for _, part := range strings.Split(pointer, "/")[1:] {
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return nil, err
		}
		decoded = strings.ReplaceAll(decoded, "~1", "/")
		decoded = strings.ReplaceAll(decoded, "~0", "~")

		switch typed := current.(type) {
		case *schema.OrderedObject:
			value, ok := typed.Get(decoded)
			if !ok {
				return nil, fmt.Errorf("pointer %q not found", pointer)
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(decoded)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, fmt.Errorf("pointer %q out of range", pointer)
			}
			current = typed[idx]
		default:
			return nil, fmt.Errorf("pointer %q walks into a scalar", pointer)
		}
	}
	return current, nil
}

// mergeSiblings copies the ref target and overlays annotation keywords
// declared next to the $ref.
func mergeSiblings(target any, refObj *schema.OrderedObject) (any, error) {
	obj, ok := target.(*schema.OrderedObject)
	if !ok {
		if refObj.Len() > 1 {
			return nil, errors.New("jsonschema: $ref target is not an object")
		}
		return target, nil
	}
	merged := schema.NewOrderedObject()
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		merged.Set(pair.Key, pair.Value)
	}
	for pair := refObj.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == "$ref" {
			continue
		}
		if !isAllowedSibling(pair.Key) {
			return nil, fmt.Errorf("jsonschema: unsupported $ref sibling %q", pair.Key)
		}
		merged.Set(pair.Key, pair.Value)
	}
	return merged, nil
}

func isAllowedSibling(key string) bool {
	switch key {
	case "title", "description", "default", "examples", "$comment":
		return true
	}
	return strings.HasPrefix(key, "x-")
}

type refStack struct {
	keys []string
}

func (s *refStack) push(key string) { s.keys = append(s.keys, key) }

func (s *refStack) pop() {
	if len(s.keys) > 0 {
		s.keys = s.keys[:len(s.keys)-1]
	}
}

func (s *refStack) len() int { return len(s.keys) }

func (s *refStack) contains(key string) bool {
	for _, existing := range s.keys {
		if existing == key {
			return true
		}
	}
	return false
}
