package mcpserver

// TopicContract describes the conventions LLM consumers should follow when
// adding or reviewing topics through the MCP tools.
const TopicContract = `# Mimir Topic Contract

Every topic tracked in Mimir follows these conventions.

## Fields

- **title** (required): a short human-readable name, e.g. "Binary search trees".
  Titles are unique enough to resolve [[wikilink]] references in notes.
- **tags** (optional): lowercase, kebab-case labels used for filtering and
  cram sessions (e.g. ` + "`" + `distributed-systems` + "`" + `, ` + "`" + `go` + "`" + `).
- **notes** (optional): free-form Markdown. Reference other topics with
  ` + "`" + `[[Topic Title]]` + "`" + `; unresolved references render as plain text.
- **intervals** (optional): the revision schedule in days. Omit it to use the
  default schedule. Each entry must be a positive number of days.

## Reviewing

1. Call ` + "`" + `list_due_topics` + "`" + ` to get the current review queue. Locked topics
   (with unmastered prerequisites) never appear in it.
2. After the learner recalls a topic, call ` + "`" + `review_topic` + "`" + ` with one of the
   confidence ratings:
   - ` + "`" + `hard` + "`" + ` - the topic was difficult; it drops a level and comes back sooner.
   - ` + "`" + `good` + "`" + ` - normal recall; the topic advances one level.
   - ` + "`" + `easy` + "`" + ` - effortless recall; the topic skips a level.
3. A topic that advances past its last interval is mastered. Mastery can
   unlock dependent topics; the review result lists them.

## Capturing

Use ` + "`" + `capture_topic` + "`" + ` for titles the learner mentions in passing. Captured
titles land in the inbox, not the tracker, so they can be triaged later.
Do not capture duplicates of topics that already exist.
`
