// Package recipe integrates encrypted attributes into recipe templates.
//
// Recipes reference node attributes through __ATTR_REF_<path>__ markers,
// where <path> is the dot-separated attribute path. ResolveTemplate reads
// each referenced attribute through the orchestrator, so encrypted values
// are decrypted in passing and cleartext values pass through untouched.
//
// Template example:
//
//	{
//	    "ftp": {
//	        "password": "__ATTR_REF_ftp.password__",
//	        "url": "ftp://host/__ATTR_REF_ftp.share__"
//	    }
//	}
//
// A reference spanning a whole quoted string keeps the value's JSON type;
// a reference inside a longer string is spliced in textually.
package recipe
