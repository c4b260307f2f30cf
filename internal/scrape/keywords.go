package scrape

import "regexp"

// DocumentationKeywords is matched, case-insensitively, against anchor text
// and href on a candidate's homepage (and its frames) to decide whether a
// link is a documentation-shaped artifact. It spans installation,
// reproducibility, maintenance, and onboarding signals, not just narrow
// "docs" links.
var DocumentationKeywords = []string{
	"doc", "docs", "documentation", "manual", "handbook", "guide", "wiki",
	"tutorial", "quickstart", "quick start", "getting started", "readme",
	"api reference", "usage", "how to",

	"install", "installation", "setup", "requirements", "dependencies",
	"pip install", "conda install", "bioconda", "bioconductor", "cran",
	"docker", "dockerfile", "singularity", "container", "pypi", "npm",

	"release", "releases", "changelog", "version", "doi", "zenodo",
	"license", "licence", "mit", "gpl", "apache", "bsd", "citation", "cite",

	"updated", "last commit", "commit", "commits", "issues", "issue tracker",
	"roadmap", "news", "maintained", "maintenance", "build status", "ci",

	"help", "faq", "troubleshooting", "contact", "community", "forum",
	"mailing list", "contributing", "contribute", "code of conduct",
	"support", "discussion", "discussions", "tutorial video", "example",
	"examples", "demo",
}

// RepositoryHosts are source-forge-adjacent hosts whose links are treated as
// the candidate's repository rather than as documentation, and whose
// navigation chrome (issues/pulls/actions tabs) is excluded from scraping.
var RepositoryHosts = []string{
	"github.com", "gitlab.com", "bitbucket.org", "codeberg.org",
	"gitee.com", "sourceforge.net", "git.sr.ht", "launchpad.net",
}

// RepoNavPathPrefixes are path prefixes on a RepositoryHosts URL that
// indicate repository chrome rather than documentation content.
var RepoNavPathPrefixes = []string{
	"/issues", "/pulls", "/pull", "/actions", "/projects", "/security",
	"/discussions", "/packages", "/marketplace", "/sponsors", "/network",
	"/graphs", "/pulse",
}

// RepoNavText is anchor text that indicates repository chrome regardless of
// path, matched after lowercasing and trimming.
var RepoNavText = map[string]struct{}{
	"issues": {}, "pull requests": {}, "pull request": {}, "actions": {},
	"security": {}, "projects": {}, "insights": {}, "code": {},
	"sponsors": {}, "packages": {}, "discussions": {}, "marketplace": {},
	"network": {}, "graphs": {}, "pulse": {},
}

// LayoutAttrKeywords are substrings of class/id/role/aria-label attributes
// that mark a container as page chrome (nav/header/footer) rather than
// article content.
var LayoutAttrKeywords = []string{
	"header", "footer", "nav", "menu", "breadcrumb", "sidebar", "toolbar",
	"subnav", "pagehead", "repository-content-header", "gh-header",
	"site-footer", "site-header",
}

// LayoutParentTags are element names that are always treated as chrome
// regardless of their attributes.
var LayoutParentTags = map[string]struct{}{
	"nav": {}, "header": {}, "footer": {}, "aside": {},
}

// PublicationHostKeywords are hosts that almost always serve a journal
// article rather than a tool's own homepage.
var PublicationHostKeywords = []string{
	"doi.org", "dx.doi.org", "pubmed.ncbi.nlm.nih.gov", "ncbi.nlm.nih.gov",
	"link.springer.com", "nature.com", "sciencedirect.com",
	"academic.oup.com", "onlinelibrary.wiley.com", "biomedcentral.com",
	"journals.plos.org", "frontiersin.org", "researchgate.net",
	"biorxiv.org", "medrxiv.org", "ieeexplore.ieee.org", "dl.acm.org",
	"jamanetwork.com", "science.org", "cell.com", "hindawi.com",
	"tandfonline.com", "karger.com", "spiedigitallibrary.org", "iop.org",
}

// DOIPathPattern matches a DOI path segment such as "/10.1234/abcd".
var DOIPathPattern = regexp.MustCompile(`(?i)/10\.[0-9]{4,9}/[-._;()/:A-Za-z0-9]+`)
