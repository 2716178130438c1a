package servicemodel

const widgetV3 = `openapi: 3.0.0
info:
  title: Widget
  version: '1.0.0'
paths:
  /widgets/{id}:
    get:
      operationId: GetWidget
      summary: Fetch a widget
      parameters:
        - name: id
          in: path
          required: true
          schema: {type: string}
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Widget'}
        '404':
          description: missing
          content:
            application/json:
              schema: {$ref: '#/components/schemas/NotFoundError'}
  /widgets:
    post:
      operationId: CreateWidget
      parameters:
        - name: name
          in: query
          schema: {type: string}
        - name: X-Trace
          in: header
          schema: {type: string}
      requestBody:
        required: true
        content:
          application/json:
            schema: {$ref: '#/components/schemas/Widget'}
      responses:
        '201':
          description: created
          headers:
            Location:
              schema: {type: string}
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Widget'}
        '400':
          description: invalid
          content:
            application/json:
              schema: {$ref: '#/components/schemas/ValidationError'}
  /ping:
    get:
      operationId: Ping
      responses:
        '204':
          description: pong
components:
  schemas:
    Widget:
      type: object
      required: [id]
      properties:
        zeta: {type: string}
        id: {type: string}
        count: {type: integer, format: int64}
        tags:
          type: array
          items: {type: string}
        created: {type: string, format: date-time}
        dimensions:
          type: object
          properties:
            width: {type: number}
    NotFoundError:
      type: object
      properties:
        message: {type: string}
    ValidationError:
      type: object
      properties:
        message: {type: string}
`

const widgetV2 = `swagger: '2.0'
info:
  title: Widget
  version: '1.0.0'
paths:
  /widgets:
    post:
      operationId: CreateWidget
      consumes: [application/json]
      produces: [application/json]
      parameters:
        - in: body
          name: widget
          required: true
          schema: {$ref: '#/definitions/Widget'}
      responses:
        200:
          description: ok
          schema: {$ref: '#/definitions/Widget'}
definitions:
  Widget:
    type: object
    properties:
      name: {type: string}
      id: {type: string}
`
