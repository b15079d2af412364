package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"inkwell/internal/apperr"
	"inkwell/internal/blog"
	"inkwell/internal/models"
	"inkwell/internal/slug"
)

// demoWriter is the part of blog.Service that seed-demo needs.
type demoWriter interface {
	CreateCategory(ctx context.Context, in blog.CategoryInput) (*models.Category, error)
	CreatePost(ctx context.Context, in blog.PostInput) (*models.Post, error)
}

type demoCategory struct {
	name        string
	description string
}

type demoPost struct {
	title    string
	category string // category name
	excerpt  string
	content  string
	tags     []string
}

var demoCategories = []demoCategory{
	{"JavaScript", "Modern JavaScript, the language and its runtime."},
	{"React", "Components, hooks and the React ecosystem."},
	{"Next.js", "Guides for building full-stack apps with Next.js."},
	{"Tasarım", "UI/UX design and CSS."},
}

var demoPosts = []demoPost{
	{
		title:    "A Guide to Async/Await in JavaScript",
		category: "JavaScript",
		excerpt:  "Write asynchronous code that reads top to bottom.",
		tags:     []string{"javascript", "async", "promises"},
		content: "## Why async/await\n\n" +
			"Promises chain well, but long chains get hard to follow. " +
			"`async` functions let you `await` a promise and handle errors with `try`/`catch`.\n\n" +
			"```js\nasync function load(id) {\n  const res = await fetch(`/api/posts/${id}`);\n  if (!res.ok) throw new Error(res.statusText);\n  return res.json();\n}\n```\n\n" +
			"## Running work in parallel\n\n" +
			"Use `Promise.all` when the calls do not depend on each other.\n",
	},
	{
		title:    "State Management with React Hooks",
		category: "React",
		excerpt:  "useState, useReducer and when to reach for context.",
		tags:     []string{"react", "hooks"},
		content: "## useState\n\n" +
			"```jsx\nconst [count, setCount] = useState(0);\n```\n\n" +
			"## useReducer\n\n" +
			"When the next state depends on the previous one in several ways, a reducer keeps the transitions in one place.\n",
	},
	{
		title:    "Building a Full-Stack App with Next.js",
		category: "Next.js",
		excerpt:  "Routing, data fetching and API routes in one project.",
		tags:     []string{"nextjs", "react", "fullstack"},
		content: "## File-based routing\n\n" +
			"- `app/page.tsx` maps to `/`\n- `app/blog/[slug]/page.tsx` maps to `/blog/:slug`\n\n" +
			"## API routes\n\n" +
			"Route handlers live next to pages and return `Response` objects.\n",
	},
	{
		title:    "Modern UI Design with Tailwind CSS",
		category: "Tasarım",
		excerpt:  "Utility classes, design tokens and responsive layouts.",
		tags:     []string{"css", "tailwind", "design"},
		content: "## Utility first\n\n" +
			"Compose small classes instead of writing new CSS for every component.\n\n" +
			"```html\n<button class=\"rounded bg-blue-600 px-4 py-2 text-white\">Save</button>\n```\n",
	},
}

// seedDemo creates the demo categories and posts. Records whose name or
// slug already exist are skipped, so running it twice is harmless.
func seedDemo(ctx context.Context, svc demoWriter, out io.Writer) error {
	slugs := make(map[string]string, len(demoCategories))
	for _, c := range demoCategories {
		s := slug.Generate(c.name)
		slugs[c.name] = s

		desc := c.description
		_, err := svc.CreateCategory(ctx, blog.CategoryInput{Name: c.name, Slug: s, Description: &desc})
		if err := skipExisting(err); err != nil {
			return fmt.Errorf("category %q: %w", c.name, err)
		}
		report(out, "category", c.name, err)
	}

	for _, p := range demoPosts {
		_, err := svc.CreatePost(ctx, blog.PostInput{
			Title:    p.title,
			Slug:     slug.Generate(p.title),
			Content:  p.content,
			Excerpt:  p.excerpt,
			Category: slugs[p.category],
			Tags:     p.tags,
			Status:   models.PostStatusPublished,
		})
		if err := skipExisting(err); err != nil {
			return fmt.Errorf("post %q: %w", p.title, err)
		}
		report(out, "post", p.title, err)
	}
	return nil
}

// skipExisting drops conflict errors.
func skipExisting(err error) error {
	var conflict *apperr.ConflictError
	if errors.As(err, &conflict) {
		return nil
	}
	return err
}

func report(out io.Writer, kind, name string, err error) {
	if err != nil {
		fmt.Fprintf(out, "skipped %s %s (already exists)\n", kind, name)
		return
	}
	fmt.Fprintf(out, "created %s %s\n", kind, name)
}
