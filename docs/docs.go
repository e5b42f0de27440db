// Package docs registers the Swagger document served under /swagger/.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [
                    {"description": "Account", "name": "account", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/main.sessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/login": {
            "post": {
                "description": "Authenticates user and sets session cookie",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {"description": "Credentials", "name": "creds", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/logout": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/me": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current account",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/account.Account"}}
                }
            }
        },
        "/products": {
            "get": {
                "description": "Filters by category, searches name and description, sorts by price-asc, price-desc or rating (newest first by default)",
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "parameters": [
                    {"type": "string", "description": "Category", "name": "category", "in": "query"},
                    {"type": "string", "description": "Case-insensitive search term", "name": "search", "in": "query"},
                    {"type": "string", "description": "price-asc | price-desc | rating", "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/catalog.Product"}}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create product",
                "parameters": [
                    {"description": "Product", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/catalog.Input"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/catalog.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            },
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Update product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/catalog.Input"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Delete product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/cart": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Get cart",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/cart.Line"}}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Add to cart",
                "parameters": [
                    {"description": "Product and quantity", "name": "item", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.addToCartRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/cart.Line"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/cart/{itemId}": {
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Update cart item",
                "parameters": [
                    {"type": "string", "description": "Cart item ID", "name": "itemId", "in": "path", "required": true},
                    {"description": "Quantity", "name": "quantity", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.quantityRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/cart.Line"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Remove cart item",
                "parameters": [
                    {"type": "string", "description": "Cart item ID", "name": "itemId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/cart.Line"}}}
                }
            }
        },
        "/orders": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List my orders",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.View"}}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place order",
                "parameters": [
                    {"description": "Items, shipping address and payment method", "name": "order", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.PlaceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/order.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/orders/all": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List all orders",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/order.View"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get order",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.View"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        },
        "/orders/{id}/status": {
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Update order status",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/main.statusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/main.messageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/main.messageResponse"}}
                }
            }
        }
    },
    "definitions": {
        "account.Account": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "admin"]},
                "createdAt": {"type": "string"}
            }
        },
        "auth.RegisterRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "catalog.Input": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "number"},
                "category": {"type": "string", "enum": ["Electronics", "Clothing", "Home & Garden", "Sports", "Books", "Toys", "Other"]},
                "image": {"type": "string"},
                "stock": {"type": "integer"}
            }
        },
        "catalog.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "price": {"type": "number"},
                "category": {"type": "string"},
                "image": {"type": "string"},
                "stock": {"type": "integer"},
                "rating": {"type": "number"},
                "numReviews": {"type": "integer"},
                "createdAt": {"type": "string"}
            }
        },
        "cart.Line": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "product": {"$ref": "#/definitions/catalog.Product"},
                "quantity": {"type": "integer"}
            }
        },
        "order.ShippingAddress": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "city": {"type": "string"},
                "postalCode": {"type": "string"},
                "country": {"type": "string"}
            }
        },
        "order.ItemRequest": {
            "type": "object",
            "properties": {
                "product": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "order.PlaceRequest": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.ItemRequest"}},
                "shippingAddress": {"$ref": "#/definitions/order.ShippingAddress"},
                "paymentMethod": {"type": "string", "enum": ["Credit Card", "PayPal", "Cash on Delivery"]}
            }
        },
        "order.LineItem": {
            "type": "object",
            "properties": {
                "product": {"type": "string"},
                "name": {"type": "string"},
                "quantity": {"type": "integer"},
                "price": {"type": "number"}
            }
        },
        "order.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.LineItem"}},
                "shippingAddress": {"$ref": "#/definitions/order.ShippingAddress"},
                "paymentMethod": {"type": "string"},
                "totalPrice": {"type": "number"},
                "status": {"type": "string", "enum": ["Pending", "Processing", "Shipped", "Delivered", "Cancelled"]},
                "createdAt": {"type": "string"},
                "deliveredAt": {"type": "string"}
            }
        },
        "order.Owner": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "order.ItemView": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "quantity": {"type": "integer"},
                "price": {"type": "number"},
                "product": {"$ref": "#/definitions/catalog.Product"}
            }
        },
        "order.View": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user": {"$ref": "#/definitions/order.Owner"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.ItemView"}},
                "shippingAddress": {"$ref": "#/definitions/order.ShippingAddress"},
                "paymentMethod": {"type": "string"},
                "totalPrice": {"type": "number"},
                "status": {"type": "string"},
                "createdAt": {"type": "string"},
                "deliveredAt": {"type": "string"}
            }
        },
        "main.addToCartRequest": {
            "type": "object",
            "properties": {
                "productId": {"type": "string"},
                "quantity": {"type": "integer"}
            }
        },
        "main.loginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "main.messageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "main.quantityRequest": {
            "type": "object",
            "properties": {
                "quantity": {"type": "integer"}
            }
        },
        "main.sessionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "createdAt": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "main.statusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["Pending", "Processing", "Shipped", "Delivered", "Cancelled"]}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8443",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Catalog, cart, checkout and order management for the storefront",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
