package opc

// Fixed WordprocessingML contract constants. Word and Word Online
// require these exact relationship-type and content-type pairs for the
// comment parts to round-trip.
const (
	RelTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RelTypeCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RelTypeHeader         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	RelTypeFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	RelTypeFootnotes      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footnotes"
	RelTypeEndnotes       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/endnotes"

	RelTypeComments           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	RelTypeCommentsExtended   = "http://schemas.microsoft.com/office/2011/relationships/commentsExtended"
	RelTypeCommentsIDs        = "http://schemas.microsoft.com/office/2016/09/relationships/commentsIds"
	RelTypeCommentsExtensible = "http://schemas.microsoft.com/office/2018/08/relationships/commentsExtensible"
	RelTypePeople             = "http://schemas.microsoft.com/office/2011/relationships/people"

	CTDocument           = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	CTCoreProps          = "application/vnd.openxmlformats-package.core-properties+xml"
	CTComments           = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"
	CTCommentsExtended   = "application/vnd.openxmlformats-officedocument.wordprocessingml.commentsExtended+xml"
	CTCommentsIDs        = "application/vnd.openxmlformats-officedocument.wordprocessingml.commentsIds+xml"
	CTCommentsExtensible = "application/vnd.openxmlformats-officedocument.wordprocessingml.commentsExtensible+xml"
	CTPeople             = "application/vnd.openxmlformats-officedocument.wordprocessingml.people+xml"
)

// WordprocessingML namespace URIs shared by the document body and the
// comment metadata parts.
const (
	NSW      = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSR      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSW14    = "http://schemas.microsoft.com/office/word/2010/wordml"
	NSW15    = "http://schemas.microsoft.com/office/word/2012/wordml"
	NSW16CID = "http://schemas.microsoft.com/office/word/2016/wordml/cid"
	NSW16CEX = "http://schemas.microsoft.com/office/word/2018/wordml/cex"
	NSMC     = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)
