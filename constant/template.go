package constant

// Global functions a Lua provider script must define.
const (
	SearchVideosFn = "SearchVideos"
	VideoByIDFn    = "VideoByID"
)

// ProviderTemplate is a text/template for scaffolding new Lua provider scripts.
const ProviderTemplate = `{{ $divider := repeat "-" (plus (max (len .URL) (len .Name) (len .Author) 3) 12) }}{{ $divider }}
-- @name    {{ .Name }}
-- @url     {{ .URL }}
-- @author  {{ .Author }}
-- @license MIT
{{ $divider }}


---@alias video { id: string, title: string, course: string|nil, duration: number|nil, manifest_url: string|nil, progressive_url: string|nil }


----- IMPORTS -----
Http = require("http")
Json = require("json")
--- END IMPORTS ---



----- VARIABLES -----
Client = Http.client()
Base = "{{ .URL }}"
--- END VARIABLES ---



----- MAIN -----

--- Searches for videos matching the given query.
-- @param query string Query to search for
-- @return video[] Table of videos
function {{ .SearchVideosFn }}(query)
	return {}
end


--- Gets a single video descriptor.
-- At least one of manifest_url and progressive_url must be set.
-- @param id string Video identifier
-- @return video Video descriptor
function {{ .VideoByIDFn }}(id)
	return { id = id, title = id }
end

--- END MAIN ---

-- ex: ts=4 sw=4 et filetype=lua
`
